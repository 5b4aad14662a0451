package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("user"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"name":"Wool Scarf","description":"Warm","image":"/i/scarf.jpg","price":24.99}]`))
	}))
	defer srv.Close()

	c := NewRecommender(srv.URL, "secret", srv.Client())
	items, err := c.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Wool Scarf", items[0].Name)
	assert.True(t, decimal.RequireFromString("24.99").Equal(items[0].Price))
}

func TestRecommend_EnvelopeAndStringPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model":"v2","recommendations":[{"title":"Beanie","price":"12.50"}]}`))
	}))
	defer srv.Close()

	c := NewRecommender(srv.URL, "", srv.Client())
	items, err := c.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Beanie", items[0].Name)
	assert.True(t, decimal.RequireFromString("12.50").Equal(items[0].Price))
}

func TestRecommend_MarkdownFencedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("```json\n[{\"name\":\"Belt\",\"price\":19}]\n```"))
	}))
	defer srv.Close()

	c := NewRecommender(srv.URL, "", srv.Client())
	items, err := c.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Belt", items[0].Name)
	assert.True(t, decimal.NewFromInt(19).Equal(items[0].Price))
}

func TestRecommend_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRecommender(srv.URL, "", srv.Client())
	_, err := c.Recommend(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestRecommend_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()

	c := NewRecommender(srv.URL, "", srv.Client())
	_, err := c.Recommend(context.Background(), "u1")
	require.Error(t, err)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[1]`, `[1]`},
		{"fenced with tag", "```json\n[1]\n```", `[1]`},
		{"fenced no tag", "```\n[1]\n```", `[1]`},
		{"surrounding whitespace", "  \n```json\n[1]\n```\n ", `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(stripFences([]byte(tt.in))))
		})
	}
}
