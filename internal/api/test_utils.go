package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
	"github.com/platefeed/backend/internal/types"
)

// testEnv wires real services over an in-memory database behind the
// full route table, so handler tests exercise the same paths the
// application mounts.
type testEnv struct {
	db     *gorm.DB
	auth   *service.AuthService
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	logger := zap.NewNop().Sugar()

	images := service.NewImageService(service.NewLocalStore(t.TempDir(), "http://localhost:8080"))
	auth := service.NewAuthService(db, "test-secret", logger)
	recipes := service.NewRecipeService(db, images, logger)
	favorites := service.NewFavoriteService(db)
	cart := service.NewCartService(db)
	subs := service.NewSubscriptionService(db)
	shoppingList := service.NewShoppingListService(db)
	shortLinks := service.NewShortLinkService(db, nil, "http://localhost:8080")
	ingredients := service.NewIngredientService(db)
	users := service.NewUserService(db, images)

	router := gin.New()
	NewShortLinkHandler(shortLinks).RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	NewAuthHandler(auth, db).RegisterRoutes(v1)
	NewUserHandler(users, subs, auth, db).RegisterRoutes(v1)
	NewIngredientHandler(ingredients).RegisterRoutes(v1)
	NewRecipeHandler(recipes, favorites, cart, shoppingList, shortLinks, auth, nil, db).RegisterRoutes(v1)

	return &testEnv{db: db, auth: auth, router: router}
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.auth.GenerateToken(&types.TokenClaims{UserID: user.ID, IsAdmin: user.IsAdmin})
	require.NoError(t, err)
	return token
}

// request performs an in-process HTTP call. A non-empty token is sent
// as a bearer header; a non-nil body is JSON-encoded.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func recipeBody(ingredients ...recipeIngredientRequest) recipeRequest {
	return recipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       testhelpers.PNGDataURI(),
		CookingTime: 20,
		Ingredients: ingredients,
	}
}
