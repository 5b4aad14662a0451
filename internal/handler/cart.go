package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/trendmart/storefront/internal/domain/cart"
	"github.com/trendmart/storefront/internal/domain/product"
)

type cartLineResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	UserID   string             `json:"userId"`
	Products []cartLineResponse `json:"products"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	lines := make([]cartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = cartLineResponse{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return cartResponse{UserID: c.UserID.String(), Products: lines}
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(c echo.Context) error {
	crt, err := h.carts.Get(c.Request().Context(), identityFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(crt))
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// AddToCart handles POST /api/cart.
func (h *Handler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	crt, err := h.carts.Add(c.Request().Context(), identityFrom(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		return mapCartError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(crt))
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartLine handles PUT /api/cart/:id.
func (h *Handler) UpdateCartLine(c echo.Context) error {
	var req updateCartLineRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	crt, err := h.carts.UpdateQuantity(c.Request().Context(), identityFrom(c).UserID, c.Param("id"), req.Quantity)
	if err != nil {
		return mapCartError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(crt))
}

// RemoveCartLine handles DELETE /api/cart/:id.
func (h *Handler) RemoveCartLine(c echo.Context) error {
	crt, err := h.carts.Remove(c.Request().Context(), identityFrom(c).UserID, c.Param("id"))
	if err != nil {
		return mapCartError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(crt))
}

type syncCartRequest struct {
	Products []cartLineResponse `json:"products"`
}

// SyncCart handles POST /api/cart/sync, reconciling a client-local cart with
// the server copy after login.
func (h *Handler) SyncCart(c echo.Context) error {
	var req syncCartRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	local := make([]cart.Line, len(req.Products))
	for i, l := range req.Products {
		local[i] = cart.Line{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	crt, err := h.carts.Sync(c.Request().Context(), identityFrom(c).UserID, local)
	if err != nil {
		return mapCartError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(crt))
}

// mapCartError converts cart domain errors to API responses.
func mapCartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, product.ErrNotFound):
		return writeError(c, http.StatusNotFound, "product not found")
	case errors.Is(err, cart.ErrQuantityTooLow):
		return writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		return writeError(c, http.StatusNotFound, "product not in cart")
	}

	var stockErr *cart.InsufficientStockError
	if errors.As(err, &stockErr) {
		return writeError(c, http.StatusConflict, stockErr.Error())
	}
	return err
}
