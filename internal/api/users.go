package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts, avatars and subscriptions.
type UserHandler struct {
	auth      middleware.TokenValidator
	users     service.IUserService
	social    *service.SocialService
	presenter *service.Presenter
}

func NewUserHandler(svc *Services) *UserHandler {
	return &UserHandler{
		auth:      svc.Auth,
		users:     svc.Users,
		social:    svc.Social,
		presenter: svc.Presenter,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.POST("/set_password", required, h.SetPassword)
		users.PUT("/me/avatar", required, h.SetAvatar)
		users.DELETE("/me/avatar", required, h.DeleteAvatar)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	users, total, err := h.users.List(ctx, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	results, err := h.presenter.Users(ctx, middleware.CurrentUserID(c), users)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.Page[types.UserResponse]{Count: total, Results: results})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderUser(c, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	h.renderUser(c, user)
}

func (h *UserHandler) renderUser(c *gin.Context, user *models.User) {
	out, err := h.presenter.Users(c.Request.Context(), middleware.CurrentUserID(c), []models.User{*user})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out[0])
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), user, &req); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req types.AvatarRequest
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.users.SetAvatar(c.Request.Context(), user, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if err := h.users.DeleteAvatar(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	page, err := h.social.Subscriptions(c.Request.Context(), user.ID,
		queryInt(c, "page"), queryInt(c, "limit"), queryInt(c, "recipes_limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	authorID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	card, err := h.social.Follow(c.Request.Context(), user.ID, authorID, queryInt(c, "recipes_limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	authorID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.social.Unfollow(c.Request.Context(), user.ID, authorID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
