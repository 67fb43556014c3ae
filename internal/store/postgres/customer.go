package postgres

import (
	"context"
	"database/sql"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const customerColumns = "id, email, first_name, last_name, phone, is_active, total_orders, total_spent, created_at, updated_at"

var customerTable = table{
	name:    "customers",
	entity:  "customer",
	columns: customerColumns,
	exprs: map[string]string{
		"id":           "id",
		"email":        "email",
		"first_name":   "first_name",
		"last_name":    "last_name",
		"phone":        "phone",
		"is_active":    "is_active",
		"total_orders": "total_orders",
		"total_spent":  "total_spent",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	},
}

// CustomerPostgres is the live store.CustomerStore.
type CustomerPostgres struct {
	db *sql.DB
}

// NewCustomerPostgres creates a new CustomerPostgres store.
func NewCustomerPostgres(db *sql.DB) *CustomerPostgres {
	return &CustomerPostgres{db: db}
}

var _ store.CustomerStore = (*CustomerPostgres)(nil)

func scanCustomer(s scanner) (model.Customer, error) {
	var c model.Customer
	err := s.Scan(
		&c.ID,
		&c.Email,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.IsActive,
		&c.TotalOrders,
		&c.TotalSpent,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *CustomerPostgres) List(ctx context.Context, d query.Descriptor) ([]model.Customer, int, error) {
	return list(ctx, r.db, customerTable, d, scanCustomer)
}

func (r *CustomerPostgres) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return r.one(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
}

func (r *CustomerPostgres) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return r.one(ctx, "SELECT "+customerColumns+" FROM customers WHERE email = $1", email)
}

func (r *CustomerPostgres) one(ctx context.Context, q string, args ...any) (*model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, classify("customer", err)
	}
	return &c, nil
}

// Create inserts a customer. Order counters start at zero.
func (r *CustomerPostgres) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	return r.one(ctx, `
		INSERT INTO customers (id, email, first_name, last_name, phone, is_active, total_orders, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8)
		RETURNING `+customerColumns,
		c.ID, c.Email, c.FirstName, c.LastName, c.Phone, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
}

// Update writes the profile columns; the order counters are left alone.
func (r *CustomerPostgres) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	return r.one(ctx, `
		UPDATE customers
		SET email = $2, first_name = $3, last_name = $4, phone = $5, is_active = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+customerColumns,
		c.ID, c.Email, c.FirstName, c.LastName, c.Phone, c.IsActive, c.UpdatedAt,
	)
}

func (r *CustomerPostgres) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.db, "customer", `DELETE FROM customers WHERE id = $1`, id)
}

// RefreshStats recomputes total_orders and total_spent. Partial orders are
// not counted; cancelled orders count but spend nothing.
func (r *CustomerPostgres) RefreshStats(ctx context.Context, id string) (*model.Customer, error) {
	return r.one(ctx, `
		UPDATE customers c
		SET total_orders = s.cnt, total_spent = s.spent
		FROM (
			SELECT COUNT(*) FILTER (WHERE status <> 'partial') AS cnt,
			       COALESCE(SUM(total) FILTER (WHERE status NOT IN ('cancelled', 'partial')), 0) AS spent
			FROM orders
			WHERE customer_id = $1
		) s
		WHERE c.id = $1
		RETURNING c.id, c.email, c.first_name, c.last_name, c.phone, c.is_active, c.total_orders, c.total_spent, c.created_at, c.updated_at`,
		id,
	)
}
