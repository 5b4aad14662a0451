package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/trendmart/storefront/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type shippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// placeOrderRequest mirrors the classic storefront checkout payload. The
// client-side price fields are accepted but ignored; totals are always
// recomputed on the server.
type placeOrderRequest struct {
	OrderItems      []orderItemRequest     `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type paymentResultResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"updateTime"`
	Email      string `json:"email"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"userId"`
	OrderItems      []orderItemResponse    `json:"orderItems"`
	ShippingAddress order.ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	TotalPrice      float64                `json:"totalPrice"`
	Status          string                 `json:"status"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	PaymentResult   *paymentResultResponse `json:"paymentResult,omitempty"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
		}
	}

	resp := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID.String(),
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice.InexactFloat64(),
		ShippingPrice:   o.ShippingPrice.InexactFloat64(),
		TaxPrice:        o.TaxPrice.InexactFloat64(),
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		Status:          string(o.Status),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
	if pr := o.PaymentResult; pr != nil {
		resp.PaymentResult = &paymentResultResponse{
			ID:         pr.ID,
			Status:     pr.Status,
			UpdateTime: pr.UpdateTime,
			Email:      pr.Email,
		}
	}
	return resp
}

func toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}

// PlaceOrder handles POST /api/orders.
func (h *Handler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	items := make([]order.LineRequest, len(req.OrderItems))
	for i, it := range req.OrderItems {
		items[i] = order.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.Place(c.Request().Context(), order.PlaceRequest{
		UserID: identityFrom(c).UserID,
		Items:  items,
		ShippingAddress: order.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return mapOrderError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

// GetOrder handles GET /api/orders/:id.
func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.orders.Get(c.Request().Context(), c.Param("id"), identityFrom(c))
	if err != nil {
		return mapOrderError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// ListMyOrders handles GET /api/orders/myorders.
func (h *Handler) ListMyOrders(c echo.Context) error {
	orders, err := h.orders.ListByUser(c.Request().Context(), identityFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// ListAllOrders handles GET /api/orders (admin).
func (h *Handler) ListAllOrders(c echo.Context) error {
	orders, err := h.orders.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// payOrderRequest carries the confirmation reported by the payment provider.
type payOrderRequest struct {
	ID         string `json:"id" validate:"required"`
	Status     string `json:"status"`
	UpdateTime string `json:"updateTime"`
	Email      string `json:"email"`
}

// PayOrder handles PUT /api/orders/:id/pay.
func (h *Handler) PayOrder(c echo.Context) error {
	var req payOrderRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	o, err := h.orders.Pay(c.Request().Context(), c.Param("id"), identityFrom(c), order.PaymentResult{
		ID:         req.ID,
		Status:     req.Status,
		UpdateTime: req.UpdateTime,
		Email:      req.Email,
	})
	if err != nil {
		return mapOrderError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// DeliverOrder handles PUT /api/orders/:id/deliver (admin).
func (h *Handler) DeliverOrder(c echo.Context) error {
	o, err := h.orders.Deliver(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapOrderError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// mapOrderError converts order domain errors to API responses.
func mapOrderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return writeError(c, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrForbidden):
		return writeError(c, http.StatusUnauthorized, "not authorized for this order")
	case errors.Is(err, order.ErrEmptyItems):
		return writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrNotPaid),
		errors.Is(err, order.ErrAlreadyDelivered):
		return writeError(c, http.StatusConflict, err.Error())
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		return writeError(c, http.StatusBadRequest, iqErr.Error())
	}
	var pnfErr *order.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		return writeError(c, http.StatusNotFound, pnfErr.Error())
	}
	var oosErr *order.OutOfStockError
	if errors.As(err, &oosErr) {
		return writeError(c, http.StatusBadRequest, oosErr.Error())
	}
	return err
}
