package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trendmart/storefront/internal/domain/order"
)

const orderColumns = `id, user_id, items, shipping_address, payment_method,
	items_price, shipping_price, tax_price, total_price, status,
	is_paid, paid_at, payment_id, payment_status, payment_update_time, payment_email,
	is_delivered, delivered_at, created_at`

const (
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	stockForUpdateSQL = `SELECT name, stock FROM products WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders
		(id, user_id, items, shipping_address, payment_method,
		items_price, shipping_price, tax_price, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	setOrderPaidSQL = `UPDATE orders SET
		status = $2, is_paid = $3, paid_at = $4,
		payment_id = $5, payment_status = $6, payment_update_time = $7, payment_email = $8
		WHERE id = $1`

	setOrderDeliveredSQL = `UPDATE orders SET
		status = $2, is_delivered = $3, delivered_at = $4
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order inside one transaction: every item's stock is
// decremented with a conditional update, the order row is inserted, and the
// owner's cart is deleted. A line whose decrement matches no row (stock ran
// short) rolls back the whole transaction and surfaces *order.OutOfStockError.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, item := range o.Items {
		tag, err := tx.Exec(ctx, decrementStockSQL, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for %q: %w", item.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return r.outOfStock(ctx, tx, item)
		}
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, itemsJSON, addressJSON, o.PaymentMethod,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice,
		o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if _, err := tx.Exec(ctx, deleteCartSQL, o.UserID); err != nil {
		return fmt.Errorf("clearing cart for %s: %w", o.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// outOfStock reads the current stock for the failed line so the error
// carries what is actually available.
func (r *OrderRepository) outOfStock(ctx context.Context, tx pgx.Tx, item order.Item) error {
	oos := &order.OutOfStockError{ProductID: item.ProductID, Name: item.Name}
	err := tx.QueryRow(ctx, stockForUpdateSQL, item.ProductID).Scan(&oos.Name, &oos.Stock)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("reading stock for %q: %w", item.ProductID, err)
	}
	return oos
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns all orders owned by userID, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %s: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// SetPaid persists the payment fields of o.
func (r *OrderRepository) SetPaid(ctx context.Context, o *order.Order) error {
	var paymentID, paymentStatus, paymentUpdateTime, paymentEmail *string
	if pr := o.PaymentResult; pr != nil {
		paymentID = &pr.ID
		paymentStatus = &pr.Status
		paymentUpdateTime = &pr.UpdateTime
		paymentEmail = &pr.Email
	}

	tag, err := r.pool.Exec(ctx, setOrderPaidSQL,
		o.ID, o.Status, o.IsPaid, o.PaidAt,
		paymentID, paymentStatus, paymentUpdateTime, paymentEmail,
	)
	if err != nil {
		return fmt.Errorf("setting order %q paid: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// SetDelivered persists the delivery fields of o.
func (r *OrderRepository) SetDelivered(ctx context.Context, o *order.Order) error {
	tag, err := r.pool.Exec(ctx, setOrderDeliveredSQL,
		o.ID, o.Status, o.IsDelivered, o.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("setting order %q delivered: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		itemsJSON   []byte
		addressJSON []byte

		paymentID, paymentStatus, paymentUpdateTime, paymentEmail *string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &addressJSON, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice, &o.Status,
		&o.IsPaid, &o.PaidAt, &paymentID, &paymentStatus, &paymentUpdateTime, &paymentEmail,
		&o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling shipping address: %w", err)
	}

	if paymentID != nil {
		o.PaymentResult = &order.PaymentResult{ID: *paymentID}
		if paymentStatus != nil {
			o.PaymentResult.Status = *paymentStatus
		}
		if paymentUpdateTime != nil {
			o.PaymentResult.UpdateTime = *paymentUpdateTime
		}
		if paymentEmail != nil {
			o.PaymentResult.Email = *paymentEmail
		}
	}
	return o, nil
}
