package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	auth          middleware.TokenValidator
	users         service.IUserService
	recipes       service.IRecipeService
	collections   *service.CollectionService
	shopping      *service.ShoppingListService
	links         *service.LinkService
	presenter     *service.Presenter
	createLimiter *middleware.RateLimiter
	baseURL       string
}

func NewRecipeHandler(svc *Services, createLimiter *middleware.RateLimiter, baseURL string) *RecipeHandler {
	return &RecipeHandler{
		auth:          svc.Auth,
		users:         svc.Users,
		recipes:       svc.Recipes,
		collections:   svc.Collections,
		shopping:      svc.Shopping,
		links:         svc.Links,
		presenter:     svc.Presenter,
		createLimiter: createLimiter,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	create := []gin.HandlerFunc{required}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PUT("/:id", required, h.UpdateRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", required, h.AddFavorite)
		recipes.DELETE("/:id/favorite", required, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", required, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromCart)
	}
}

// tagSlugs collects slugs from repeated tags parameters. A parameter may
// also carry several comma-separated slugs.
func tagSlugs(values []string) []string {
	var slugs []string
	for _, v := range values {
		for _, slug := range strings.Split(v, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				slugs = append(slugs, slug)
			}
		}
	}
	return slugs
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentUserID(c)

	author, ok := queryFilterID(c, "author")
	if !ok {
		return
	}
	favorited, ok := queryFlag(c, "is_favorited")
	if !ok {
		return
	}
	inCart, ok := queryFlag(c, "is_in_shopping_cart")
	if !ok {
		return
	}

	filter := service.RecipeFilter{
		ViewerID:         viewer,
		AuthorID:         author,
		Tags:             tagSlugs(c.QueryArray("tags")),
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Page:             queryInt(c, "page"),
		Limit:            queryInt(c, "limit"),
	}

	recipes, total, err := h.recipes.List(ctx, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	results, err := h.presenter.Recipes(ctx, viewer, recipes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.Page[types.RecipeResponse]{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) renderRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	out, err := h.presenter.Recipe(c.Request.Context(), middleware.CurrentUserID(c), recipe)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, out)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), user, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderRecipe(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), user, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}
	base := h.baseURL
	if base == "" {
		base = requestBaseURL(c)
	}
	link, err := h.links.ShortLink(c.Request.Context(), base, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: link})
}

type collectionAdd func(c *gin.Context, userID, recipeID uint) (*models.Recipe, error)
type collectionRemove func(c *gin.Context, userID, recipeID uint) error

func (h *RecipeHandler) add(fn collectionAdd) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, h.users)
		if !ok {
			return
		}
		id, ok := pathID(c, "id", "recipe")
		if !ok {
			return
		}
		recipe, err := fn(c, user.ID, id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, service.ShortRecipe(recipe))
	}
}

func (h *RecipeHandler) remove(fn collectionRemove) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, h.users)
		if !ok {
			return
		}
		id, ok := pathID(c, "id", "recipe")
		if !ok {
			return
		}
		if err := fn(c, user.ID, id); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.add(func(c *gin.Context, userID, recipeID uint) (*models.Recipe, error) {
		return h.collections.AddFavorite(c.Request.Context(), userID, recipeID)
	})(c)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.remove(func(c *gin.Context, userID, recipeID uint) error {
		return h.collections.RemoveFavorite(c.Request.Context(), userID, recipeID)
	})(c)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.add(func(c *gin.Context, userID, recipeID uint) (*models.Recipe, error) {
		return h.collections.AddToCart(c.Request.Context(), userID, recipeID)
	})(c)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.remove(func(c *gin.Context, userID, recipeID uint) error {
		return h.collections.RemoveFromCart(c.Request.Context(), userID, recipeID)
	})(c)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	items, err := h.shopping.Aggregate(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.shopping.FileName(user.Username)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.shopping.Render(items)))
}
