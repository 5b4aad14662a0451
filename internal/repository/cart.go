package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trendmart/storefront/internal/domain/cart"
)

const (
	getCartSQL = `SELECT lines FROM carts WHERE user_id = $1`

	ensureCartSQL = `INSERT INTO carts (user_id, lines, updated_at)
		VALUES ($1, '[]'::jsonb, now())
		ON CONFLICT (user_id) DO NOTHING`

	lockCartSQL = `SELECT lines FROM carts WHERE user_id = $1 FOR UPDATE`

	updateCartSQL = `UPDATE carts SET lines = $2, updated_at = now() WHERE user_id = $1`

	deleteCartSQL = `DELETE FROM carts WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. The lines
// of a cart live in a single JSONB document keyed by the owning user.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart, or an empty cart when none is stored.
func (r *CartRepository) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &cart.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart for %s: %w", userID, err)
	}

	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("unmarshaling cart for %s: %w", userID, err)
	}
	return &cart.Cart{UserID: userID, Lines: lines}, nil
}

// Mutate applies fn to the user's cart inside one transaction, holding a row
// lock from read to write so concurrent mutations to the same cart serialize
// instead of overwriting each other. The row is created first when absent so
// FOR UPDATE always has something to lock; when fn declines to write, the
// rollback also discards that placeholder.
func (r *CartRepository) Mutate(ctx context.Context, userID uuid.UUID, fn func(*cart.Cart) error) (*cart.Cart, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("mutating cart for %s: %w", userID, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, ensureCartSQL, userID); err != nil {
		return nil, fmt.Errorf("mutating cart for %s: %w", userID, err)
	}

	var raw []byte
	if err := tx.QueryRow(ctx, lockCartSQL, userID).Scan(&raw); err != nil {
		return nil, fmt.Errorf("locking cart for %s: %w", userID, err)
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("unmarshaling cart for %s: %w", userID, err)
	}

	c := &cart.Cart{UserID: userID, Lines: lines}
	if err := fn(c); err != nil {
		if errors.Is(err, cart.ErrUnchanged) {
			return c, nil
		}
		return nil, err
	}

	out := c.Lines
	if out == nil {
		out = []cart.Line{}
	}
	raw, err = json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling cart for %s: %w", userID, err)
	}
	if _, err := tx.Exec(ctx, updateCartSQL, userID, raw); err != nil {
		return nil, fmt.Errorf("saving cart for %s: %w", userID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("saving cart for %s: %w", userID, err)
	}
	return c, nil
}

// Clear removes the user's cart document. Clearing an absent cart is a
// no-op.
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, deleteCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for %s: %w", userID, err)
	}
	return nil
}
