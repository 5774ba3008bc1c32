package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testBaseURL = "http://foodgram.test"

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	svc    *Services
}

func newTestServices(t *testing.T, db *gorm.DB) *Services {
	t.Helper()
	images := service.NewDiskImageStore(t.TempDir(), "/media")
	svc, err := NewServices(db, images, ServiceConfig{
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		HashIDSalt:      "test-salt",
		HashIDMinLength: 6,
	})
	require.NoError(t, err)
	return svc
}

func newTestRouter(svc *Services, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	RegisterRoutes(router, svc, opts)
	return router
}

// setupTestAPI builds the full route table over an in-memory database.
func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	svc := newTestServices(t, db)
	return &testAPI{
		router: newTestRouter(svc, Options{PublicBaseURL: testBaseURL}),
		db:     db,
		svc:    svc,
	}
}

// login creates a user and returns it with a valid token.
func (a *testAPI) login(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, a.db, username)
	token, err := a.svc.Auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

// PerformRequest sends body as JSON and authenticates with token when it is set.
func PerformRequest(router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeJSON[middleware.ErrorResponse](t, w).Code
}

func recipeBody(name string, lines ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"text":         "Mix and bake.",
		"cooking_time": 15,
		"image":        testhelpers.PNGDataURL,
		"ingredients":  lines,
		"tags":         []uint{},
	}
}

func ingredientLine(id uint, amount int) map[string]interface{} {
	return map[string]interface{}{"id": id, "amount": amount}
}
