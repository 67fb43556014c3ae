package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const (
	orderColumns = "id, order_number, customer_id, status, total, shipping_address, notes, created_at, updated_at"
	itemColumns  = "id, order_id, product_id, product_name, quantity, unit_price"
)

var orderTable = table{
	name:    "orders",
	entity:  "order",
	columns: orderColumns,
	exprs: map[string]string{
		"id":            "id",
		"order_number":  "order_number",
		"customer_id":   "customer_id",
		"status":        "status",
		"total":         "total",
		"shipping_name": "shipping_address->>'name'",
		"notes":         "notes",
		"created_at":    "created_at",
		"updated_at":    "updated_at",
	},
}

// OrderPostgres is the live store.OrderStore. CreateAtomic writes the header
// and its items in one transaction.
type OrderPostgres struct {
	db *sql.DB
}

// NewOrderPostgres creates a new OrderPostgres store.
func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var (
	_ store.OrderStore         = (*OrderPostgres)(nil)
	_ store.AtomicOrderCreator = (*OrderPostgres)(nil)
)

func scanOrder(s scanner) (model.Order, error) {
	var o model.Order
	err := s.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.Status,
		&o.Total,
		jsonColumn{Target: &o.ShippingAddress},
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.Items = []model.OrderItem{}
	return o, err
}

func (r *OrderPostgres) List(ctx context.Context, d query.Descriptor) ([]model.Order, int, error) {
	orders, total, err := list(ctx, r.db, orderTable, d, scanOrder)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderPostgres) FindByID(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		return nil, classify("order", err)
	}
	orders := []model.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// attachItems loads the items of every order in one query. Items keep their
// insertion order through the seq column.
func (r *OrderPostgres) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	pos := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		pos[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, seq",
		pq.Array(ids),
	)
	if err != nil {
		return classify("order", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return classify("order", err)
		}
		if i, ok := pos[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return classify("order", rows.Err())
}

func (r *OrderPostgres) InsertHeader(ctx context.Context, o *model.Order) error {
	return insertHeader(ctx, r.db, o)
}

func (r *OrderPostgres) InsertItem(ctx context.Context, it *model.OrderItem) error {
	return insertItem(ctx, r.db, it)
}

// CreateAtomic inserts o and all of its items, or nothing.
func (r *OrderPostgres) CreateAtomic(ctx context.Context, o *model.Order) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("order", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertHeader(ctx, tx, o); err != nil {
		return nil, err
	}
	for i := range o.Items {
		if err := insertItem(ctx, tx, &o.Items[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("order", err)
	}
	out := o.Clone()
	return &out, nil
}

func insertHeader(ctx context.Context, q querier, o *model.Order) error {
	addr, err := jsonArg(o.ShippingAddress)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, customer_id, status, total, shipping_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID,
		o.OrderNumber,
		o.CustomerID,
		string(o.Status),
		o.Total,
		addr,
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return classify("order", err)
}

func insertItem(ctx context.Context, q querier, it *model.OrderItem) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID,
		it.OrderID,
		it.ProductID,
		it.ProductName,
		it.Quantity,
		it.UnitPrice,
	)
	return classify("order item", err)
}

// UpdateHeader writes status, address, notes and total, then reloads the order.
func (r *OrderPostgres) UpdateHeader(ctx context.Context, o *model.Order) (*model.Order, error) {
	addr, err := jsonArg(o.ShippingAddress)
	if err != nil {
		return nil, err
	}
	if err := exec(ctx, r.db, "order", `
		UPDATE orders
		SET status = $2, shipping_address = $3, notes = $4, total = $5, updated_at = $6
		WHERE id = $1`,
		o.ID, string(o.Status), addr, o.Notes, o.Total, o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, o.ID)
}

// Delete removes an order; its items cascade.
func (r *OrderPostgres) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.db, "order", `DELETE FROM orders WHERE id = $1`, id)
}

func (r *OrderPostgres) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&n); err != nil {
		return 0, classify("order", err)
	}
	return n, nil
}
