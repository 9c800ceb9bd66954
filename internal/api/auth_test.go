package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody(handle string) gin.H {
	return gin.H{
		"email":      handle + "@example.com",
		"username":   handle,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "hunter2hunter2",
	}
}

func TestAuthEndpoints_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("anna"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		User  UserResponse `json:"user"`
		Token string       `json:"token"`
	}
	decodeJSON(t, w, &reg)
	assert.Equal(t, "anna", reg.User.Username)
	assert.NotEmpty(t, reg.Token)

	// The issued token is immediately usable.
	w = env.request(t, http.MethodGet, "/api/v1/users/me", reg.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "anna@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w, &login)
	assert.NotEmpty(t, login.Token)
}

func TestAuthEndpoints_RegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("anna"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("anna"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpoints_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("anna"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "anna@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
