package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.L.Fatal("failed to load configuration", zap.Error(err))
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		logging.L.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, migrationsDir()); err != nil {
		logging.L.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Rate limiting is optional; the API still serves without it.
		logging.L.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	images, mediaRoot, err := imageStore(ctx, cfg)
	if err != nil {
		logging.L.Fatal("failed to set up image storage", zap.Error(err))
	}

	svc, err := api.NewServices(db, images, api.ServiceConfig{
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.TokenTTL,
		HashIDSalt:      cfg.HashIDSalt,
		HashIDMinLength: cfg.HashIDMinLength,
	})
	if err != nil {
		logging.L.Fatal("failed to build services", zap.Error(err))
	}

	opts := api.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		Health: func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		},
	}
	if redisClient != nil {
		opts.CreateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RecipeCreateWindow)
	}

	engine := router.SetupRouter(svc, router.Config{
		CORSOrigins:    cfg.CORSOrigins,
		MediaRoot:      mediaRoot,
		MediaURLPrefix: cfg.MediaURLPrefix,
	}, opts)

	if err := server.New(cfg.Addr(), engine).Run(ctx); err != nil {
		logging.L.Error("server stopped with error", zap.Error(err))
		closeDB(db)
		os.Exit(1)
	}
	closeDB(db)
	logging.L.Info("server stopped")
}

// imageStore picks S3 when a bucket is configured. The returned media root is
// empty for S3 since nothing is served from disk.
func imageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, string, error) {
	if cfg.UsesS3() {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		logging.L.Info("storing images in s3", zap.String("bucket", cfg.S3Bucket))
		return service.NewS3ImageStore(s3cfg), "", nil
	}
	logging.L.Info("storing images on disk", zap.String("root", cfg.MediaRoot))
	return service.NewDiskImageStore(cfg.MediaRoot, cfg.MediaURLPrefix), cfg.MediaRoot, nil
}

func migrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
