package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/trendmart/storefront/internal/domain/wishlist"
)

type wishlistItemResponse struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}

// ListWishlist handles GET /api/wishlist.
func (h *Handler) ListWishlist(c echo.Context) error {
	items, err := h.wishlists.List(c.Request().Context(), identityFrom(c).UserID)
	if err != nil {
		return err
	}

	out := make([]wishlistItemResponse, len(items))
	for i, it := range items {
		out[i] = wishlistItemResponse{ProductID: it.ProductID, AddedAt: it.AddedAt}
	}
	return c.JSON(http.StatusOK, out)
}

type addToWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// AddToWishlist handles POST /api/wishlist.
func (h *Handler) AddToWishlist(c echo.Context) error {
	var req addToWishlistRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.wishlists.Add(c.Request().Context(), identityFrom(c).UserID, req.ProductID)
	if err != nil {
		return mapWishlistError(c, err)
	}
	return c.JSON(http.StatusCreated, wishlistItemResponse{
		ProductID: item.ProductID,
		AddedAt:   item.AddedAt,
	})
}

// RemoveFromWishlist handles DELETE /api/wishlist/:id.
func (h *Handler) RemoveFromWishlist(c echo.Context) error {
	if err := h.wishlists.Remove(c.Request().Context(), identityFrom(c).UserID, c.Param("id")); err != nil {
		return mapWishlistError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MoveWishlistToCart handles POST /api/wishlist/:id/move-to-cart.
func (h *Handler) MoveWishlistToCart(c echo.Context) error {
	crt, err := h.wishlists.MoveToCart(c.Request().Context(), identityFrom(c).UserID, c.Param("id"))
	if err != nil {
		return mapWishlistMoveError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(crt))
}

// mapWishlistError converts wishlist domain errors to API responses.
func mapWishlistError(c echo.Context, err error) error {
	if errors.Is(err, wishlist.ErrDuplicate) {
		return writeError(c, http.StatusConflict, "product already in wishlist")
	}
	return mapProductError(c, err)
}

// mapWishlistMoveError additionally maps the cart-side failures of a move.
func mapWishlistMoveError(c echo.Context, err error) error {
	if errors.Is(err, wishlist.ErrDuplicate) {
		return writeError(c, http.StatusConflict, "product already in wishlist")
	}
	return mapCartError(c, err)
}
