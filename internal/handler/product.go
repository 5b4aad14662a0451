package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/trendmart/storefront/internal/domain/product"
)

type productResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	Stock         int      `json:"countInStock"`
	Rating        float64  `json:"rating"`
	NumReviews    int      `json:"numReviews"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Count    int               `json:"count"`
}

func toProductResponse(p product.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Rating:      p.Rating.InexactFloat64(),
		NumReviews:  p.NumReviews,
	}
	if p.DiscountPrice != nil {
		v := p.DiscountPrice.InexactFloat64()
		resp.DiscountPrice = &v
	}
	return resp
}

func toProductResponses(products []product.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(c echo.Context) error {
	q := product.ListQuery{
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Sort:     product.SortKey(c.QueryParam("sort")),
	}

	// The classic filter encodes the range as price=min-max; the split
	// priceMin/priceMax parameters are accepted too and take precedence.
	if raw := c.QueryParam("price"); raw != "" {
		min, max, err := parsePriceRange(raw)
		if err != nil {
			return badRequest(c, "invalid price range, want min-max")
		}
		q.PriceMin, q.PriceMax = min, max
	}
	if v, err := parseDecimalParam(c, "priceMin"); err != nil {
		return badRequest(c, "invalid priceMin")
	} else if v != nil {
		q.PriceMin = v
	}
	if v, err := parseDecimalParam(c, "priceMax"); err != nil {
		return badRequest(c, "invalid priceMax")
	} else if v != nil {
		q.PriceMax = v
	}

	var err error
	if q.MinRating, err = parseDecimalParam(c, "rating"); err != nil {
		return badRequest(c, "invalid rating")
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("pageNumber"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))

	result, err := h.products.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{
		Products: toProductResponses(result.Products),
		Page:     result.Page,
		Pages:    result.Pages,
		Count:    result.Count,
	})
}

// parsePriceRange splits a "min-max" range into its decimal bounds.
func parsePriceRange(raw string) (*decimal.Decimal, *decimal.Decimal, error) {
	lo, hi, ok := strings.Cut(raw, "-")
	if !ok {
		return nil, nil, errors.New("missing range separator")
	}
	min, err := decimal.NewFromString(lo)
	if err != nil {
		return nil, nil, err
	}
	max, err := decimal.NewFromString(hi)
	if err != nil {
		return nil, nil, err
	}
	return &min, &max, nil
}

func parseDecimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SearchProducts handles GET /api/products/search.
func (h *Handler) SearchProducts(c echo.Context) error {
	keyword := c.QueryParam("q")
	if keyword == "" {
		return badRequest(c, "query parameter q required")
	}

	products, err := h.products.Search(c.Request().Context(), keyword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// GetProduct handles GET /api/products/:id.
func (h *Handler) GetProduct(c echo.Context) error {
	p, err := h.products.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapProductError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(*p))
}

type productRequest struct {
	Name          string   `json:"name" validate:"required"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Price         float64  `json:"price" validate:"gt=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gt=0"`
	Stock         int      `json:"countInStock" validate:"gte=0"`
}

func (req *productRequest) apply(p *product.Product) {
	p.Name = req.Name
	p.Brand = req.Brand
	p.Category = req.Category
	p.Description = req.Description
	p.Image = req.Image
	p.Price = decimal.NewFromFloat(req.Price).Round(2)
	p.DiscountPrice = nil
	if req.DiscountPrice != nil {
		d := decimal.NewFromFloat(*req.DiscountPrice).Round(2)
		p.DiscountPrice = &d
	}
	p.Stock = req.Stock
}

// CreateProduct handles POST /api/products (admin).
func (h *Handler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	p := &product.Product{ID: uuid.New().String(), CreatedAt: time.Now()}
	req.apply(p)
	if err := h.products.Create(c.Request().Context(), p); err != nil {
		return err
	}
	h.index.Add(p.ID)
	return c.JSON(http.StatusCreated, toProductResponse(*p))
}

// UpdateProduct handles PUT /api/products/:id (admin).
func (h *Handler) UpdateProduct(c echo.Context) error {
	var req productRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.products.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapProductError(c, err)
	}
	req.apply(p)
	if err := h.products.Update(c.Request().Context(), p); err != nil {
		return mapProductError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(*p))
}

// DeleteProduct handles DELETE /api/products/:id (admin).
func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.products.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapProductError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// mapProductError converts product domain errors to API responses.
func mapProductError(c echo.Context, err error) error {
	if errors.Is(err, product.ErrNotFound) {
		return writeError(c, http.StatusNotFound, "product not found")
	}
	return err
}
