package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services bundles everything the handlers depend on.
type Services struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Catalog     *service.CatalogService
	Recipes     service.IRecipeService
	Collections *service.CollectionService
	Social      *service.SocialService
	Shopping    *service.ShoppingListService
	Links       *service.LinkService
	Presenter   *service.Presenter
}

// ServiceConfig carries the settings NewServices needs.
type ServiceConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	HashIDSalt      string
	HashIDMinLength int
}

// NewServices wires the service layer on top of db and images.
func NewServices(db *gorm.DB, images service.ImageStore, cfg ServiceConfig) (*Services, error) {
	catalog := service.NewCatalogService(db)
	recipes := service.NewRecipeService(db, catalog, images)
	links, err := service.NewLinkService(cfg.HashIDSalt, cfg.HashIDMinLength, recipes)
	if err != nil {
		return nil, err
	}
	return &Services{
		Auth:        service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		Users:       service.NewUserService(db, images),
		Catalog:     catalog,
		Recipes:     recipes,
		Collections: service.NewCollectionService(db, recipes),
		Social:      service.NewSocialService(db),
		Shopping:    service.NewShoppingListService(db),
		Links:       links,
		Presenter:   service.NewPresenter(db),
	}, nil
}

// Options tune route registration.
type Options struct {
	// PublicBaseURL prefixes short links. When empty the request host is used.
	PublicBaseURL string
	// CreateLimiter throttles recipe creation; nil disables it.
	CreateLimiter *middleware.RateLimiter
	// Health reports whether backing stores are reachable.
	Health func(ctx context.Context) error
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, svc *Services, opts Options) {
	router.GET("/health", healthCheck(opts.Health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/s/:code", redirectShortLink(svc.Links))

	api := router.Group("/api")

	NewAuthHandler(svc.Auth).RegisterRoutes(api)
	NewUserHandler(svc).RegisterRoutes(api)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(api)
	NewRecipeHandler(svc, opts.CreateLimiter, opts.PublicBaseURL).RegisterRoutes(api)
}

func healthCheck(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func redirectShortLink(links *service.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := links.Resolve(c.Request.Context(), c.Param("code"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", id))
	}
}

var errNotAuthenticated = apperr.Unauthorized("authentication credentials were not provided")
