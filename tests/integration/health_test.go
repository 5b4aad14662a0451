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

func TestHealthEndpoints(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/livez", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("readiness", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/readyz", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("request id echoed", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/products", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		resp.Body.Close()
	})

	t.Run("rate limit headers present", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/products", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
		resp.Body.Close()
	})

	t.Run("cors preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, baseURL+"/api/products", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")

		resp, err := httpClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestRecommendations(t *testing.T) {
	token := signUp(t, "Rec Customer", fmt.Sprintf("rec-%d@integration.test", time.Now().UnixNano()))

	resp := doRequest(t, http.MethodGet, "/api/recommend", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := decodeJSON[[]struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}](t, resp)
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.NotEmpty(t, it.Name)
		assert.Positive(t, it.Price)
	}
}
