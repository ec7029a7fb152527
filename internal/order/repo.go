package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Repo reads and writes orders in Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, user_id, cart_id, status, currency,
	subtotal::text, shipping::text, tax::text, total::text,
	shipping_address, notes, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                              Order
		subtotal, shipping, tax, total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.CartID, &o.Status, &o.Currency,
		&subtotal, &shipping, &tax, &total,
		&o.ShippingAddress, &o.Notes, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	var err error
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return Order{}, fmt.Errorf("parse subtotal: %w", err)
	}
	if o.Shipping, err = decimal.NewFromString(shipping); err != nil {
		return Order{}, fmt.Errorf("parse shipping: %w", err)
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return Order{}, fmt.Errorf("parse tax: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("parse total: %w", err)
	}
	return o, nil
}

// Create persists the order and its items in one transaction.
func (r *Repo) Create(ctx context.Context, o Order) (Order, error) {
	if r == nil || r.Pool == nil {
		return Order{}, errors.New("order repo not configured")
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	status := o.Status
	if status == "" {
		status = StatusReceived
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, cart_id, status, currency, subtotal, shipping, tax, total, shipping_address, notes)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9, $10)
		 RETURNING id, status, created_at`,
		o.UserID, o.CartID, status, o.Currency,
		o.Subtotal.String(), o.Shipping.String(), o.Tax.String(), o.Total.String(),
		o.ShippingAddress, o.Notes,
	).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, config, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)
			 RETURNING id`,
			o.ID, item.ProductID, item.ProductName, item.Quantity, item.Config,
			item.UnitPrice.String(), item.LineTotal.String(),
		).Scan(&item.ID)
		if err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit checkout tx: %w", err)
	}
	return o, nil
}

// GetByID loads an order with its items.
func (r *Repo) GetByID(ctx context.Context, id string) (Order, error) {
	if r == nil || r.Pool == nil {
		return Order{}, errors.New("order repo not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrNotFound
	}
	row := r.Pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order %s: %w", id, err)
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT id, product_id, product_name, quantity, config, unit_price::text, line_total::text
		 FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			item                 Item
			unitPrice, lineTotal string
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Config, &unitPrice, &lineTotal); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return Order{}, fmt.Errorf("parse unit price: %w", err)
		}
		if item.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return Order{}, fmt.Errorf("parse line total: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("iterate order items: %w", err)
	}
	return o, nil
}

// ListForUser returns the user's orders newest first plus the total count.
func (r *Repo) ListForUser(ctx context.Context, userID string, page, perPage int) ([]Order, int64, error) {
	if r == nil || r.Pool == nil {
		return nil, 0, errors.New("order repo not configured")
	}
	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	rows, err := r.Pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0, perPage)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus moves the order through the state machine. It returns the new
// order state, or ErrNotFound / an invalid-transition error.
func (r *Repo) UpdateStatus(ctx context.Context, id, target string) (Order, error) {
	if r == nil || r.Pool == nil {
		return Order{}, errors.New("order repo not configured")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrNotFound
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("begin status tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current string
	if err := tx.QueryRow(ctx, "SELECT status FROM orders WHERE id = $1 FOR UPDATE", id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("lock order %s: %w", id, err)
	}
	if !AllowedTransition(current, target) {
		return Order{}, fmt.Errorf("cannot move order from %s to %s", current, target)
	}
	row := tx.QueryRow(ctx,
		"UPDATE orders SET status = $2 WHERE id = $1 RETURNING "+orderColumns, id, target)
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit status tx: %w", err)
	}
	return o, nil
}

// CountByStatus aggregates order counts for the admin dashboard.
// Revenue sums the totals of all non-canceled orders.
func (r *Repo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	if r == nil || r.Pool == nil {
		return decimal.Zero, errors.New("order repo not configured")
	}
	var raw string
	err := r.Pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(total), 0)::text FROM orders WHERE status <> $1", StatusCanceled,
	).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	revenue, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse revenue: %w", err)
	}
	return revenue, nil
}

func (r *Repo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("order repo not configured")
	}
	rows, err := r.Pool.Query(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}
