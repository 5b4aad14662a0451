// Package handler exposes the storefront over a JSON HTTP API.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trendmart/storefront/internal/domain/cart"
	"github.com/trendmart/storefront/internal/domain/order"
	"github.com/trendmart/storefront/internal/domain/product"
	"github.com/trendmart/storefront/internal/domain/recommend"
	"github.com/trendmart/storefront/internal/domain/user"
	"github.com/trendmart/storefront/internal/domain/wishlist"
)

// Handler routes API requests to the domain services.
type Handler struct {
	products  product.Repository
	index     *product.IDIndex
	users     *user.Service
	carts     *cart.Service
	orders    *order.Service
	wishlists *wishlist.Service
	recs      *recommend.Service
	security  *Security
	validate  *validator.Validate
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	index *product.IDIndex,
	users *user.Service,
	carts *cart.Service,
	orders *order.Service,
	wishlists *wishlist.Service,
	recs *recommend.Service,
	security *Security,
) *Handler {
	return &Handler{
		products:  products,
		index:     index,
		users:     users,
		carts:     carts,
		orders:    orders,
		wishlists: wishlists,
		recs:      recs,
		security:  security,
		validate:  validator.New(),
	}
}

// Register mounts every API route on the echo instance under /api.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")

	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/signin", h.SignIn)
	api.GET("/auth/profile", h.GetProfile, h.security.Authenticate)
	api.PUT("/auth/profile", h.UpdateProfile, h.security.Authenticate)

	api.GET("/products", h.ListProducts)
	api.GET("/products/search", h.SearchProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products", h.CreateProduct, h.security.Authenticate, h.security.RequireAdmin)
	api.PUT("/products/:id", h.UpdateProduct, h.security.Authenticate, h.security.RequireAdmin)
	api.DELETE("/products/:id", h.DeleteProduct, h.security.Authenticate, h.security.RequireAdmin)

	carts := api.Group("/cart", h.security.Authenticate)
	carts.GET("", h.GetCart)
	carts.POST("", h.AddToCart)
	carts.POST("/sync", h.SyncCart)
	carts.PUT("/:id", h.UpdateCartLine)
	carts.DELETE("/:id", h.RemoveCartLine)

	orders := api.Group("/orders", h.security.Authenticate)
	orders.POST("", h.PlaceOrder)
	orders.GET("", h.ListAllOrders, h.security.RequireAdmin)
	orders.GET("/myorders", h.ListMyOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id/pay", h.PayOrder)
	orders.PUT("/:id/deliver", h.DeliverOrder, h.security.RequireAdmin)

	wish := api.Group("/wishlist", h.security.Authenticate)
	wish.GET("", h.ListWishlist)
	wish.POST("", h.AddToWishlist)
	wish.DELETE("/:id", h.RemoveFromWishlist)
	wish.POST("/:id/move-to-cart", h.MoveWishlistToCart)

	api.GET("/recommend", h.Recommendations, h.security.Authenticate)
}

// errorResponse is the uniform error envelope of the API.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Code: status, Message: message})
}

func badRequest(c echo.Context, message string) error {
	return writeError(c, http.StatusBadRequest, message)
}

// bindAndValidate decodes the request body into req and runs struct
// validation on it. A non-nil return is always safe to echo back to the
// client as a 400 message.
func (h *Handler) bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}
	return nil
}
