package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trendmart/storefront/internal/domain/wishlist"
)

const (
	listWishlistSQL = `SELECT product_id, added_at FROM wishlist_items
		WHERE user_id = $1 ORDER BY added_at, product_id`

	insertWishlistItemSQL = `INSERT INTO wishlist_items (user_id, product_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	deleteWishlistItemSQL = `DELETE FROM wishlist_items
		WHERE user_id = $1 AND product_id = $2`
)

var _ wishlist.Repository = (*WishlistRepository)(nil)

// WishlistRepository implements wishlist.Repository backed by PostgreSQL.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// List returns the user's wishlist in insertion order.
func (r *WishlistRepository) List(ctx context.Context, userID uuid.UUID) ([]wishlist.Item, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for %s: %w", userID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (wishlist.Item, error) {
		var it wishlist.Item
		err := row.Scan(&it.ProductID, &it.AddedAt)
		return it, err
	})
}

// Add inserts the item. The conflict target absorbs duplicates, which are
// reported as wishlist.ErrDuplicate via the affected row count.
func (r *WishlistRepository) Add(ctx context.Context, userID uuid.UUID, item wishlist.Item) error {
	tag, err := r.pool.Exec(ctx, insertWishlistItemSQL, userID, item.ProductID, item.AddedAt)
	if err != nil {
		return fmt.Errorf("adding wishlist item %q for %s: %w", item.ProductID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return wishlist.ErrDuplicate
	}
	return nil
}

// Remove deletes the item. Removing an absent item is a no-op.
func (r *WishlistRepository) Remove(ctx context.Context, userID uuid.UUID, productID string) error {
	if _, err := r.pool.Exec(ctx, deleteWishlistItemSQL, userID, productID); err != nil {
		return fmt.Errorf("removing wishlist item %q for %s: %w", productID, userID, err)
	}
	return nil
}
