package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	a := setupTestAPI(t)
	lunch := testhelpers.CreateTag(t, a.db, "Lunch", "#49b64e", "lunch")
	testhelpers.CreateTag(t, a.db, "Breakfast", "#e26c2d", "breakfast")

	w := PerformRequest(a.router, http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tags := decodeJSON[[]types.TagResponse](t, w)
	require.Len(t, tags, 2)

	w = PerformRequest(a.router, http.MethodGet, fmt.Sprintf("/api/tags/%d", lunch.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.TagResponse{ID: lunch.ID, Name: "Lunch", Color: "#49b64e", Slug: "lunch"}, decodeJSON[types.TagResponse](t, w))

	w = PerformRequest(a.router, http.MethodGet, "/api/tags/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredients(t *testing.T) {
	a := setupTestAPI(t)
	salt := testhelpers.CreateIngredient(t, a.db, "Salt", "g")
	testhelpers.CreateIngredient(t, a.db, "Sugar", "g")
	testhelpers.CreateIngredient(t, a.db, "Flour", "g")

	w := PerformRequest(a.router, http.MethodGet, "/api/ingredients?name=s", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON[[]models.Ingredient](t, w), 2)

	w = PerformRequest(a.router, http.MethodGet, "/api/ingredients?name=zzz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = PerformRequest(a.router, http.MethodGet, fmt.Sprintf("/api/ingredients/%d", salt.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"Salt","measurement_unit":"g"}`, salt.ID), w.Body.String())
}

func TestHealth(t *testing.T) {
	a := setupTestAPI(t)

	w := PerformRequest(a.router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	router := newTestRouter(a.svc, Options{Health: func(ctx context.Context) error {
		return errors.New("database unreachable")
	}})
	w = PerformRequest(router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

func TestMetricsEndpoint(t *testing.T) {
	a := setupTestAPI(t)

	w := PerformRequest(a.router, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
