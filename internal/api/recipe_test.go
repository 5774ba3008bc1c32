package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipe(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.login(t, "chef")
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")
	tag := testhelpers.CreateTag(t, a.db, "Breakfast", "#e26c2d", "breakfast")

	body := recipeBody("Pancakes", ingredientLine(flour.ID, 200))
	body["tags"] = []uint{tag.ID}

	w := PerformRequest(a.router, http.MethodPost, "/api/recipes", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	recipe := decodeJSON[types.RecipeResponse](t, w)
	assert.NotZero(t, recipe.ID)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, "chef", recipe.Author.Username)
	assert.True(t, strings.HasPrefix(recipe.Image, "/media/recipes/images/"), recipe.Image)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, types.IngredientLineResponse{ID: flour.ID, Name: "Flour", MeasurementUnit: "g", Amount: 200}, recipe.Ingredients[0])
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	a := setupTestAPI(t)
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")

	w := PerformRequest(a.router, http.MethodPost, "/api/recipes", recipeBody("Bread", ingredientLine(flour.ID, 1)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperr.CodeUnauthorized, errorCode(t, w))

	w = PerformRequest(a.router, http.MethodPost, "/api/recipes", recipeBody("Bread", ingredientLine(flour.ID, 1)), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipeValidationErrors(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.login(t, "chef")
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")

	noImage := recipeBody("Bread", ingredientLine(flour.ID, 1))
	delete(noImage, "image")

	tests := []struct {
		name  string
		body  map[string]interface{}
		code  string
		field string
	}{
		{"no ingredients", recipeBody("Bread"), apperr.CodeEmptyIngredients, "ingredients"},
		{"unknown ingredient", recipeBody("Bread", ingredientLine(9999, 1)), apperr.CodeUnknownIngredient, "ingredients"},
		{"duplicate ingredient", recipeBody("Bread", ingredientLine(flour.ID, 1), ingredientLine(flour.ID, 2)), apperr.CodeDuplicateIngredient, "ingredients"},
		{"zero amount", recipeBody("Bread", ingredientLine(flour.ID, 0)), apperr.CodeAmountOutOfRange, "ingredients"},
		{"missing name", recipeBody("", ingredientLine(flour.ID, 1)), apperr.CodeInvalidInput, "name"},
		{"missing image", noImage, apperr.CodeImageRequired, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := PerformRequest(a.router, http.MethodPost, "/api/recipes", tt.body, token)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decodeJSON[middleware.ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Contains(t, resp.Fields, tt.field)
		})
	}

	var count int64
	require.NoError(t, a.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeMalformedBody(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.login(t, "chef")

	w := PerformRequest(a.router, http.MethodPost, "/api/recipes", "not an object", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeInvalidInput, errorCode(t, w))
}

func TestRecipeUpdateAndDelete(t *testing.T) {
	a := setupTestAPI(t)
	author, authorToken := a.login(t, "author")
	_, otherToken := a.login(t, "other")
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")
	sugar := testhelpers.CreateIngredient(t, a.db, "Sugar", "g")
	recipe := testhelpers.CreateRecipe(t, a.db, author, "Cake", []testhelpers.Line{{Ingredient: flour, Amount: 100}})
	path := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	update := recipeBody("Sweet cake", ingredientLine(sugar.ID, 50))
	delete(update, "image")

	w := PerformRequest(a.router, http.MethodPatch, path, update, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = PerformRequest(a.router, http.MethodPatch, path, update, authorToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeJSON[types.RecipeResponse](t, w)
	assert.Equal(t, "Sweet cake", updated.Name)
	assert.Equal(t, recipe.Image, updated.Image)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, sugar.ID, updated.Ingredients[0].ID)

	w = PerformRequest(a.router, http.MethodDelete, path, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = PerformRequest(a.router, http.MethodDelete, path, nil, authorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(a.router, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperr.CodeNotFound, errorCode(t, w))
}

func TestGetRecipeBadID(t *testing.T) {
	a := setupTestAPI(t)

	w := PerformRequest(a.router, http.MethodGet, "/api/recipes/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesFilters(t *testing.T) {
	a := setupTestAPI(t)
	alice, aliceToken := a.login(t, "alice")
	bob := testhelpers.CreateUser(t, a.db, "bob")
	egg := testhelpers.CreateIngredient(t, a.db, "Egg", "pcs")
	breakfast := testhelpers.CreateTag(t, a.db, "Breakfast", "#e26c2d", "breakfast")
	lunch := testhelpers.CreateTag(t, a.db, "Lunch", "#49b64e", "lunch")
	dinner := testhelpers.CreateTag(t, a.db, "Dinner", "#8775d2", "dinner")
	lines := []testhelpers.Line{{Ingredient: egg, Amount: 2}}

	omelette := testhelpers.CreateRecipe(t, a.db, alice, "Omelette", lines, breakfast)
	testhelpers.CreateRecipe(t, a.db, alice, "Salad", lines, lunch)
	testhelpers.CreateRecipe(t, a.db, bob, "Stew", lines, dinner)

	list := func(query, token string) types.Page[types.RecipeResponse] {
		w := PerformRequest(a.router, http.MethodGet, "/api/recipes"+query, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeJSON[types.Page[types.RecipeResponse]](t, w)
	}

	page := list("", "")
	assert.EqualValues(t, 3, page.Count)
	assert.Len(t, page.Results, 3)

	page = list(fmt.Sprintf("?author=%d", alice.ID), "")
	assert.EqualValues(t, 2, page.Count)

	page = list("?tags=breakfast&tags=lunch", "")
	assert.EqualValues(t, 2, page.Count)

	page = list("?tags=breakfast,lunch", "")
	assert.EqualValues(t, 2, page.Count)

	page = list("?limit=1&page=2", "")
	assert.EqualValues(t, 3, page.Count)
	assert.Len(t, page.Results, 1)

	// Anonymous callers get nothing for personal filters.
	page = list("?is_favorited=1", "")
	assert.EqualValues(t, 0, page.Count)
	assert.NotNil(t, page.Results)

	w := PerformRequest(a.router, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", omelette.ID), nil, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code)

	page = list("?is_favorited=true", aliceToken)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, omelette.ID, page.Results[0].ID)
	assert.True(t, page.Results[0].IsFavorited)

	page = list("?is_favorited=0", aliceToken)
	assert.EqualValues(t, 2, page.Count)
	for _, r := range page.Results {
		assert.NotEqual(t, omelette.ID, r.ID)
	}

	page = list("?is_favorited=0", "")
	assert.EqualValues(t, 0, page.Count)
	page = list("?is_in_shopping_cart=false", "")
	assert.EqualValues(t, 0, page.Count)

	page = list("?page=9223372036854775807", "")
	assert.EqualValues(t, 3, page.Count)
	assert.Empty(t, page.Results)
}

func TestListRecipesRejectsMalformedFilters(t *testing.T) {
	a := setupTestAPI(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non-numeric author", "?author=abc", "author"},
		{"zero author", "?author=0", "author"},
		{"bad favorited flag", "?is_favorited=maybe", "is_favorited"},
		{"bad cart flag", "?is_in_shopping_cart=2", "is_in_shopping_cart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := PerformRequest(a.router, http.MethodGet, "/api/recipes"+tt.query, nil, "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, apperr.CodeInvalidInput, errorCode(t, w))
			assert.Contains(t, w.Body.String(), tt.field)
		})
	}
}

func TestFavoriteToggle(t *testing.T) {
	a := setupTestAPI(t)
	author := testhelpers.CreateUser(t, a.db, "author")
	_, token := a.login(t, "fan")
	egg := testhelpers.CreateIngredient(t, a.db, "Egg", "pcs")
	recipe := testhelpers.CreateRecipe(t, a.db, author, "Omelette", []testhelpers.Line{{Ingredient: egg, Amount: 2}})
	path := fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID)

	w := PerformRequest(a.router, http.MethodPost, path, nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	short := decodeJSON[types.ShortRecipeResponse](t, w)
	assert.Equal(t, types.ShortRecipeResponse{ID: recipe.ID, Name: "Omelette", Image: recipe.Image, CookingTime: 10}, short)

	w = PerformRequest(a.router, http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeAlreadyExists, errorCode(t, w))

	w = PerformRequest(a.router, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(a.router, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = PerformRequest(a.router, http.MethodPost, "/api/recipes/9999/favorite", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	a := setupTestAPI(t)
	author := testhelpers.CreateUser(t, a.db, "author")
	_, token := a.login(t, "shopper")
	salt := testhelpers.CreateIngredient(t, a.db, "Salt", "g")
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")
	bread := testhelpers.CreateRecipe(t, a.db, author, "Bread", []testhelpers.Line{{Ingredient: flour, Amount: 500}, {Ingredient: salt, Amount: 5}})
	soup := testhelpers.CreateRecipe(t, a.db, author, "Soup", []testhelpers.Line{{Ingredient: salt, Amount: 3}})

	for _, r := range []*models.Recipe{bread, soup} {
		w := PerformRequest(a.router, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", r.ID), nil, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := PerformRequest(a.router, http.MethodGet, "/api/recipes/download_shopping_cart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_list_shopper.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Flour — 500 g\nSalt — 8 g\n", w.Body.String())

	w = PerformRequest(a.router, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart", bread.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(a.router, http.MethodGet, "/api/recipes/download_shopping_cart", nil, token)
	assert.Equal(t, "Salt — 3 g\n", w.Body.String())

	w = PerformRequest(a.router, http.MethodGet, "/api/recipes/download_shopping_cart", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShortLinkRoundTrip(t *testing.T) {
	a := setupTestAPI(t)
	author := testhelpers.CreateUser(t, a.db, "author")
	egg := testhelpers.CreateIngredient(t, a.db, "Egg", "pcs")
	recipe := testhelpers.CreateRecipe(t, a.db, author, "Omelette", []testhelpers.Line{{Ingredient: egg, Amount: 2}})

	w := PerformRequest(a.router, http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link", recipe.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	link := decodeJSON[types.ShortLinkResponse](t, w).ShortLink
	require.True(t, strings.HasPrefix(link, testBaseURL+"/s/"), link)

	w = PerformRequest(a.router, http.MethodGet, strings.TrimPrefix(link, testBaseURL), nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/recipes/%d", recipe.ID), w.Header().Get("Location"))

	w = PerformRequest(a.router, http.MethodGet, "/s/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = PerformRequest(a.router, http.MethodGet, "/api/recipes/9999/get-link", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShortLinkUsesRequestHost(t *testing.T) {
	a := setupTestAPI(t)
	router := newTestRouter(a.svc, Options{})
	author := testhelpers.CreateUser(t, a.db, "author")
	egg := testhelpers.CreateIngredient(t, a.db, "Egg", "pcs")
	recipe := testhelpers.CreateRecipe(t, a.db, author, "Omelette", []testhelpers.Line{{Ingredient: egg, Amount: 2}})

	w := PerformRequest(router, http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link", recipe.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(decodeJSON[types.ShortLinkResponse](t, w).ShortLink, "http://example.com/s/"))
}

func TestShortLinkForwardedProto(t *testing.T) {
	a := setupTestAPI(t)
	router := newTestRouter(a.svc, Options{})
	author := testhelpers.CreateUser(t, a.db, "author")
	egg := testhelpers.CreateIngredient(t, a.db, "Egg", "pcs")
	recipe := testhelpers.CreateRecipe(t, a.db, author, "Omelette", []testhelpers.Line{{Ingredient: egg, Amount: 2}})

	tests := []struct {
		proto  string
		prefix string
	}{
		{"https", "https://example.com/s/"},
		{"HTTPS", "https://example.com/s/"},
		{"javascript", "http://example.com/s/"},
		{"ftp://evil", "http://example.com/s/"},
	}
	for _, tt := range tests {
		t.Run(tt.proto, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link", recipe.ID), nil)
			req.Header.Set("X-Forwarded-Proto", tt.proto)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.True(t, strings.HasPrefix(decodeJSON[types.ShortLinkResponse](t, w).ShortLink, tt.prefix))
		})
	}
}

func TestRecipeCreationRateLimit(t *testing.T) {
	a := setupTestAPI(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := newTestRouter(a.svc, Options{
		PublicBaseURL: testBaseURL,
		CreateLimiter: middleware.NewRecipeCreationRateLimiter(client, 1, time.Hour),
	})
	_, token := a.login(t, "chef")
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")

	w := PerformRequest(router, http.MethodPost, "/api/recipes", recipeBody("Bread", ingredientLine(flour.ID, 1)), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = PerformRequest(router, http.MethodPost, "/api/recipes", recipeBody("Rolls", ingredientLine(flour.ID, 1)), token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestListRecipesServiceFailure(t *testing.T) {
	a := setupTestAPI(t)
	recipes := new(mocks.MockRecipeService)
	recipes.On("List", mock.Anything, mock.AnythingOfType("service.RecipeFilter")).
		Return(nil, int64(0), errors.New("connection reset"))

	svc := *a.svc
	svc.Recipes = recipes
	router := newTestRouter(&svc, Options{})

	w := PerformRequest(router, http.MethodGet, "/api/recipes", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeJSON[middleware.ErrorResponse](t, w)
	assert.Equal(t, apperr.CodeInternal, resp.Code)
	assert.NotContains(t, resp.Error, "connection reset")
	recipes.AssertExpectations(t)
}
