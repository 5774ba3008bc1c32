package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"go.uber.org/zap"
)

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "JSON list of {name, measurement_unit}; empty to skip")
	tagsPath := flag.String("tags", "data/tags.json", "JSON list of {name, color, slug}; empty to skip")
	usersPath := flag.String("users", "", "JSON list of demo accounts to register; empty to skip")
	migrations := flag.String("migrations", "migrations", "Directory holding the .sql migration files")
	flag.Parse()

	defer logging.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.L.Fatal("failed to load configuration", zap.Error(err))
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.New(cfg)
	if err != nil {
		logging.L.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, *migrations); err != nil {
		logging.L.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	catalog := service.NewCatalogService(db)
	if err := seed(ctx, catalog, *ingredientsPath, *tagsPath); err != nil {
		logging.L.Fatal("seeding failed", zap.Error(err))
	}
	if *usersPath != "" {
		auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
		if err := seedUsers(ctx, auth, *usersPath); err != nil {
			logging.L.Fatal("seeding users failed", zap.Error(err))
		}
	}
}

// seed imports both catalogs. Ingredients already present and tags that clash
// with an existing one are skipped, so the command can be re-run.
func seed(ctx context.Context, catalog *service.CatalogService, ingredientsPath, tagsPath string) error {
	if ingredientsPath != "" {
		var items []types.IngredientRequest
		if err := readJSON(ingredientsPath, &items); err != nil {
			return err
		}
		created, err := catalog.ImportIngredients(ctx, items)
		if err != nil {
			return fmt.Errorf("failed to import ingredients: %w", err)
		}
		logging.L.Info("ingredients imported", zap.Int("created", created), zap.Int("total", len(items)))
	}

	if tagsPath != "" {
		var tags []types.TagRequest
		if err := readJSON(tagsPath, &tags); err != nil {
			return err
		}
		for i := range tags {
			tag, err := catalog.CreateTag(ctx, &tags[i])
			if errors.Is(err, apperr.ErrAlreadyExists) {
				logging.L.Info("tag exists, skipping", zap.String("slug", tags[i].Slug))
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to create tag %q: %w", tags[i].Slug, err)
			}
			logging.L.Info("tag created", zap.Uint("id", tag.ID), zap.String("slug", tag.Slug))
		}
	}
	return nil
}

// seedUsers registers demo accounts through the normal sign-up path. Accounts
// whose email or username is taken are left alone.
func seedUsers(ctx context.Context, auth service.IAuthService, path string) error {
	var users []types.RegisterRequest
	if err := readJSON(path, &users); err != nil {
		return err
	}
	for i := range users {
		user, err := auth.Register(ctx, &users[i])
		if errors.Is(err, apperr.ErrAlreadyExists) {
			logging.L.Info("user exists, skipping", zap.String("username", users[i].Username))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to register %q: %w", users[i].Username, err)
		}
		logging.L.Info("user registered", zap.Uint("id", user.ID), zap.String("username", user.Username))
	}
	return nil
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
