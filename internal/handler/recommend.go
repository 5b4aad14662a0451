package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type recommendationResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

// Recommendations handles GET /api/recommend. The endpoint always succeeds;
// upstream failures degrade to the static default list.
func (h *Handler) Recommendations(c echo.Context) error {
	items := h.recs.For(c.Request().Context(), identityFrom(c).UserID.String())

	out := make([]recommendationResponse, len(items))
	for i, it := range items {
		out[i] = recommendationResponse{
			Name:        it.Name,
			Description: it.Description,
			Image:       it.Image,
			Price:       it.Price.InexactFloat64(),
		}
	}
	return c.JSON(http.StatusOK, out)
}
