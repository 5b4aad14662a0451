//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	email := fmt.Sprintf("alice-%d@integration.test", time.Now().UnixNano())

	t.Run("signup issues token", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name":     "Alice",
			"email":    email,
			"password": "integration-pw-123",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeJSON[authResponse](t, resp)
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "Alice", body.User.Name)
		assert.Equal(t, email, body.User.Email)
		assert.Equal(t, "customer", body.User.Role)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name":     "Alice Again",
			"email":    email,
			"password": "integration-pw-123",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		body := decodeJSON[errorResponse](t, resp)
		assert.Equal(t, http.StatusConflict, body.Code)
	})

	t.Run("signin with wrong password", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
			"email":    email,
			"password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("signin and fetch profile", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
			"email":    email,
			"password": "integration-pw-123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		token := decodeJSON[authResponse](t, resp).Token

		resp = doRequest(t, http.MethodGet, "/api/auth/profile", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		profile := decodeJSON[userResponse](t, resp)
		assert.Equal(t, email, profile.Email)
	})

	t.Run("profile without token", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/auth/profile", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/auth/profile", "not-a-jwt", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}
