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

var testShippingAddress = map[string]string{
	"address":    "1 Integration Way",
	"city":       "Testville",
	"postalCode": "12345",
	"country":    "Testland",
}

// firstInStockProduct picks a seeded product with enough stock for the flow.
func firstInStockProduct(t *testing.T, minStock int) productResponse {
	t.Helper()

	resp := doRequest(t, http.MethodGet, "/api/products?pageSize=50", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeJSON[productListResponse](t, resp)

	for _, p := range list.Products {
		if p.Stock >= minStock {
			return p
		}
	}
	t.Fatalf("no seeded product with stock >= %d", minStock)
	return productResponse{}
}

func TestCartFlow(t *testing.T) {
	token := signUp(t, "Cart Customer", fmt.Sprintf("cart-%d@integration.test", time.Now().UnixNano()))
	p := firstInStockProduct(t, 2)

	t.Run("cart requires auth", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/cart", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("empty cart", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/cart", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		crt := decodeJSON[cartResponse](t, resp)
		assert.Empty(t, crt.Products)
	})

	t.Run("add product", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/cart", token, map[string]any{
			"productId": p.ID,
			"quantity":  2,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		crt := decodeJSON[cartResponse](t, resp)
		require.Len(t, crt.Products, 1)
		assert.Equal(t, p.ID, crt.Products[0].ProductID)
		assert.Equal(t, 2, crt.Products[0].Quantity)
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/cart", token, map[string]any{
			"productId": "no-such-product",
			"quantity":  1,
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("over stock is 409", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, "/api/cart", token, map[string]any{
			"productId": p.ID,
			"quantity":  p.Stock + 100,
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("update and remove line", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, "/api/cart/"+p.ID, token, map[string]any{"quantity": 1})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		crt := decodeJSON[cartResponse](t, resp)
		require.Len(t, crt.Products, 1)
		assert.Equal(t, 1, crt.Products[0].Quantity)

		resp = doRequest(t, http.MethodDelete, "/api/cart/"+p.ID, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		crt = decodeJSON[cartResponse](t, resp)
		assert.Empty(t, crt.Products)
	})
}

func TestOrderFlow(t *testing.T) {
	token := signUp(t, "Order Customer", fmt.Sprintf("order-%d@integration.test", time.Now().UnixNano()))
	adminToken := signInAdmin(t)
	p := firstInStockProduct(t, 2)

	placeBody := map[string]any{
		"orderItems": []map[string]any{
			{"productId": p.ID, "quantity": 1},
		},
		"shippingAddress": testShippingAddress,
		"paymentMethod":   "PayPal",
	}

	var orderID string

	t.Run("place order", func(t *testing.T) {
		// Put the item in the cart first so checkout clears it.
		resp := doRequest(t, http.MethodPost, "/api/cart", token, map[string]any{
			"productId": p.ID,
			"quantity":  1,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = doRequest(t, http.MethodPost, "/api/orders", token, placeBody)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		o := decodeJSON[orderResponse](t, resp)
		require.NotEmpty(t, o.ID)
		assert.Equal(t, "Processing", o.Status)
		assert.False(t, o.IsPaid)
		assert.InDelta(t, o.ItemsPrice+o.ShippingPrice+o.TaxPrice, o.TotalPrice, 0.001)
		orderID = o.ID
	})

	t.Run("checkout decrements stock", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/products/"+p.ID, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeJSON[productResponse](t, resp)
		assert.Equal(t, p.Stock-1, got.Stock)
	})

	t.Run("checkout clears cart", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/cart", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		crt := decodeJSON[cartResponse](t, resp)
		assert.Empty(t, crt.Products)
	})

	t.Run("stranger cannot read order", func(t *testing.T) {
		stranger := signUp(t, "Stranger", fmt.Sprintf("stranger-%d@integration.test", time.Now().UnixNano()))
		resp := doRequest(t, http.MethodGet, "/api/orders/"+orderID, stranger, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("deliver before payment is 409", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, "/api/orders/"+orderID+"/deliver", adminToken, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	payBody := map[string]any{
		"id":         "PAY-INTEGRATION-1",
		"status":     "COMPLETED",
		"updateTime": time.Now().Format(time.RFC3339),
		"email":      "payer@integration.test",
	}

	t.Run("pay order", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, "/api/orders/"+orderID+"/pay", token, payBody)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		o := decodeJSON[orderResponse](t, resp)
		assert.True(t, o.IsPaid)
		assert.Equal(t, "Paid", o.Status)
	})

	t.Run("pay is idempotent per confirmation", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, "/api/orders/"+orderID+"/pay", token, payBody)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		different := map[string]any{"id": "PAY-INTEGRATION-2", "status": "COMPLETED"}
		resp = doRequest(t, http.MethodPut, "/api/orders/"+orderID+"/pay", token, different)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("deliver requires admin", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, "/api/orders/"+orderID+"/deliver", token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("admin delivers", func(t *testing.T) {
		resp := doRequest(t, http.MethodPut, "/api/orders/"+orderID+"/deliver", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		o := decodeJSON[orderResponse](t, resp)
		assert.True(t, o.IsDelivered)
		assert.Equal(t, "Delivered", o.Status)
	})

	t.Run("order history", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/orders/myorders", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		orders := decodeJSON[[]orderResponse](t, resp)
		require.NotEmpty(t, orders)
		assert.Equal(t, orderID, orders[0].ID)
	})

	t.Run("admin order listing", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, "/api/orders", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		orders := decodeJSON[[]orderResponse](t, resp)
		assert.NotEmpty(t, orders)
	})
}
