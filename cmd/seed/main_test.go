package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSeedIsRepeatable(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	catalog := service.NewCatalogService(db)

	ingredients := writeFile(t, "ingredients.json", `[
		{"name": "flour", "measurement_unit": "g"},
		{"name": "milk", "measurement_unit": "ml"}
	]`)
	tags := writeFile(t, "tags.json", `[
		{"name": "Breakfast", "color": "#E26C2D", "slug": "breakfast"}
	]`)

	ctx := context.Background()
	require.NoError(t, seed(ctx, catalog, ingredients, tags))
	require.NoError(t, seed(ctx, catalog, ingredients, tags))

	var ingredientCount, tagCount int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredientCount).Error)
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.EqualValues(t, 2, ingredientCount)
	assert.EqualValues(t, 1, tagCount)

	var tag models.Tag
	require.NoError(t, db.First(&tag).Error)
	assert.Equal(t, "#e26c2d", tag.Color)
}

func TestSeedRejectsBadInput(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	assert.Error(t, seed(ctx, catalog, filepath.Join(t.TempDir(), "missing.json"), ""))
	assert.Error(t, seed(ctx, catalog, writeFile(t, "broken.json", `{`), ""))
	assert.Error(t, seed(ctx, catalog, "", writeFile(t, "tags.json", `[{"name": "Bad", "color": "red", "slug": "bad"}]`)))
}

func TestSeedUsers(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	users := writeFile(t, "users.json", `[
		{"email": "Demo@Example.com", "username": "demo", "first_name": "Demo", "last_name": "Cook", "password": "demo-password"},
		{"email": "chef@example.com", "username": "chef", "first_name": "Head", "last_name": "Chef", "password": "chef-password"}
	]`)
	require.NoError(t, seedUsers(ctx, auth, users))
	require.NoError(t, seedUsers(ctx, auth, users))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	_, token, err := auth.Login(ctx, &types.LoginRequest{Email: "demo@example.com", Password: "demo-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	bad := writeFile(t, "bad.json", `[{"email": "x", "username": "x", "first_name": "x", "last_name": "x", "password": "short"}]`)
	assert.Error(t, seedUsers(ctx, auth, bad))
}
