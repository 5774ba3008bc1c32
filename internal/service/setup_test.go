package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	images      *service.DiskImageStore
	mediaRoot   string
	catalog     *service.CatalogService
	recipes     *service.RecipeService
	collections *service.CollectionService
	social      *service.SocialService
	shopping    *service.ShoppingListService
	presenter   *service.Presenter
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	root := t.TempDir()
	images := service.NewDiskImageStore(root, "/media")
	catalog := service.NewCatalogService(db)
	recipes := service.NewRecipeService(db, catalog, images)
	return &testEnv{
		db:          db,
		images:      images,
		mediaRoot:   root,
		catalog:     catalog,
		recipes:     recipes,
		collections: service.NewCollectionService(db, recipes),
		social:      service.NewSocialService(db),
		shopping:    service.NewShoppingListService(db),
		presenter:   service.NewPresenter(db),
	}
}

// recipeRequest builds a valid create request for the given lines.
func recipeRequest(name string, lines ...types.IngredientLineRequest) *types.RecipeRequest {
	return &types.RecipeRequest{
		Ingredients: lines,
		Image:       testhelpers.PNGDataURL,
		Name:        name,
		Text:        "Mix and serve.",
		CookingTime: 15,
	}
}

func line(ing *models.Ingredient, amount int) types.IngredientLineRequest {
	return types.IngredientLineRequest{ID: ing.ID, Amount: amount}
}

var ctx = context.Background()
