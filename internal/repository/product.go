package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/trendmart/storefront/internal/domain/product"
)

const productColumns = `id, name, brand, category, description, image,
	price, discount_price, stock, rating, num_reviews, created_at`

const (
	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = ANY($1)`

	searchProductsSQL = `SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1 OR description ILIKE $1
		ORDER BY id`

	listProductIDsSQL = `SELECT id FROM products ORDER BY id`

	insertProductSQL = `INSERT INTO products
		(id, name, brand, category, description, image, price, discount_price, stock, rating, num_reviews, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateProductSQL = `UPDATE products SET
		name = $2, brand = $3, category = $4, description = $5, image = $6,
		price = $7, discount_price = $8, stock = $9, rating = $10, num_reviews = $11
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one page of the catalog after applying the query's filters
// and sort order.
func (r *ProductRepository) List(ctx context.Context, q product.ListQuery) (*product.ListResult, error) {
	q.Normalize()

	where, args := buildProductFilters(q)

	var count int
	countSQL := `SELECT count(*) FROM products` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	listSQL := `SELECT ` + productColumns + ` FROM products` + where +
		orderClause(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	pages := (count + q.PageSize - 1) / q.PageSize
	return &product.ListResult{
		Products: products,
		Page:     q.Page,
		Pages:    pages,
		Count:    count,
	}, nil
}

// buildProductFilters renders the conjunctive WHERE clause for a list query.
// It returns the clause (with a leading " WHERE" when non-empty) and its
// positional arguments.
func buildProductFilters(q product.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.Category != "" {
		add("category = $%d", q.Category)
	}
	if q.Brand != "" {
		add("brand = $%d", q.Brand)
	}
	if q.PriceMin != nil {
		add("COALESCE(discount_price, price) >= $%d", *q.PriceMin)
	}
	if q.PriceMax != nil {
		add("COALESCE(discount_price, price) <= $%d", *q.PriceMax)
	}
	if q.MinRating != nil {
		add("rating >= $%d", *q.MinRating)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(sort product.SortKey) string {
	switch sort {
	case product.SortPriceAsc:
		return " ORDER BY COALESCE(discount_price, price) ASC, id"
	case product.SortPriceDesc:
		return " ORDER BY COALESCE(discount_price, price) DESC, id"
	case product.SortNewest:
		return " ORDER BY created_at DESC, id"
	default:
		return " ORDER BY id"
	}
}

// Search returns products whose name, brand, category, or description
// matches the keyword, case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	rows, err := r.pool.Query(ctx, searchProductsSQL, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// escapeLike neutralizes LIKE metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListIDs returns every product id in the catalog.
func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listProductIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing product ids: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Brand, p.Category, p.Description, p.Image,
		p.Price, p.DiscountPrice, p.Stock, p.Rating, p.NumReviews, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Brand, p.Category, p.Description, p.Image,
		p.Price, p.DiscountPrice, p.Stock, p.Rating, p.NumReviews,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		price    decimal.Decimal
		discount *decimal.Decimal
		rating   decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.Image,
		&price, &discount, &p.Stock, &rating, &p.NumReviews, &p.CreatedAt,
	)
	p.Price = price
	p.DiscountPrice = discount
	p.Rating = rating
	return p, err
}
