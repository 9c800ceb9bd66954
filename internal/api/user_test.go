package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

func TestUserEndpoints_GetAndMe(t *testing.T) {
	env := newTestEnv(t)

	anna := testhelpers.CreateUser(t, env.db, "anna")

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", anna.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "anna", resp.Username)
	assert.False(t, resp.IsSubscribed)

	w = env.request(t, http.MethodGet, "/api/v1/users/me", env.tokenFor(t, anna), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resp)
	assert.Equal(t, anna.ID, resp.ID)

	w = env.request(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/users/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserEndpoints_List(t *testing.T) {
	env := newTestEnv(t)

	testhelpers.CreateUser(t, env.db, "boris")
	testhelpers.CreateUser(t, env.db, "anna")

	w := env.request(t, http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var p struct {
		Count   int64          `json:"count"`
		Results []UserResponse `json:"results"`
	}
	decodeJSON(t, w, &p)
	assert.EqualValues(t, 2, p.Count)
	require.Len(t, p.Results, 2)
	assert.Equal(t, "anna", p.Results[0].Username)
}

func TestUserEndpoints_SubscribeFlow(t *testing.T) {
	env := newTestEnv(t)

	anna := testhelpers.CreateUser(t, env.db, "anna")
	boris := testhelpers.CreateUser(t, env.db, "boris")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	testhelpers.CreateRecipe(t, env.db, anna, "Pancakes", map[*models.Ingredient]int{flour: 100})

	token := env.tokenFor(t, boris)
	path := fmt.Sprintf("/api/v1/users/%d/subscribe", anna.ID)

	w := env.request(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sub SubscriptionResponse
	decodeJSON(t, w, &sub)
	assert.Equal(t, anna.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 1, sub.RecipesCount)
	require.Len(t, sub.Recipes, 1)
	assert.Equal(t, "Pancakes", sub.Recipes[0].Name)

	w = env.request(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The author's profile now reports the follow for this viewer.
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", anna.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile UserResponse
	decodeJSON(t, w, &profile)
	assert.True(t, profile.IsSubscribed)

	w = env.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserEndpoints_SelfSubscribe(t *testing.T) {
	env := newTestEnv(t)

	anna := testhelpers.CreateUser(t, env.db, "anna")

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/subscribe", anna.ID), env.tokenFor(t, anna), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserEndpoints_Subscriptions(t *testing.T) {
	env := newTestEnv(t)

	reader := testhelpers.CreateUser(t, env.db, "reader")
	anna := testhelpers.CreateUser(t, env.db, "anna")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, env.db, anna, fmt.Sprintf("Dish %d", i), map[*models.Ingredient]int{flour: 10})
	}
	require.NoError(t, env.db.Create(&models.Subscription{UserID: reader.ID, AuthorID: anna.ID}).Error)

	w := env.request(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=2", env.tokenFor(t, reader), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p struct {
		Count   int64                  `json:"count"`
		Results []SubscriptionResponse `json:"results"`
	}
	decodeJSON(t, w, &p)
	assert.EqualValues(t, 1, p.Count)
	require.Len(t, p.Results, 1)
	assert.Equal(t, anna.ID, p.Results[0].ID)
	assert.Len(t, p.Results[0].Recipes, 2)
	assert.EqualValues(t, 3, p.Results[0].RecipesCount)
}

func TestUserEndpoints_Avatar(t *testing.T) {
	env := newTestEnv(t)

	anna := testhelpers.CreateUser(t, env.db, "anna")
	token := env.tokenFor(t, anna)

	w := env.request(t, http.MethodPut, "/api/v1/users/me/avatar", token, gin.H{"avatar": testhelpers.PNGDataURI()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	decodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp["avatar"])

	w = env.request(t, http.MethodDelete, "/api/v1/users/me/avatar", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, "/api/v1/users/me/avatar", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
