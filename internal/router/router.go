package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Config controls the engine-level middleware and static media.
type Config struct {
	CORSOrigins []string
	// MediaRoot is served under MediaURLPrefix when set. Leave it empty when
	// images live in S3.
	MediaRoot      string
	MediaURLPrefix string
}

// SetupRouter configures the application routes
func SetupRouter(svc *api.Services, cfg Config, opts api.Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	if cfg.MediaRoot != "" && cfg.MediaURLPrefix != "" {
		router.Static(cfg.MediaURLPrefix, cfg.MediaRoot)
	}

	api.RegisterRoutes(router, svc, opts)
	return router
}
