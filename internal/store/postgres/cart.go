package postgres

import (
	"context"
	"database/sql"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const cartColumns = "id, customer_id, product_id, quantity, price, created_at, updated_at"

var cartTable = table{
	name:    "cart_items",
	entity:  "cart item",
	columns: cartColumns,
	exprs: map[string]string{
		"id":          "id",
		"customer_id": "customer_id",
		"product_id":  "product_id",
		"quantity":    "quantity",
		"price":       "price",
		"created_at":  "created_at",
		"updated_at":  "updated_at",
	},
}

// CartPostgres is the live store.CartStore.
type CartPostgres struct {
	db *sql.DB
}

// NewCartPostgres creates a new CartPostgres store.
func NewCartPostgres(db *sql.DB) *CartPostgres {
	return &CartPostgres{db: db}
}

var _ store.CartStore = (*CartPostgres)(nil)

func scanCartItem(s scanner) (model.CartItem, error) {
	var c model.CartItem
	err := s.Scan(&c.ID, &c.CustomerID, &c.ProductID, &c.Quantity, &c.Price, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CartPostgres) List(ctx context.Context, d query.Descriptor) ([]model.CartItem, int, error) {
	return list(ctx, r.db, cartTable, d, scanCartItem)
}

func (r *CartPostgres) FindByID(ctx context.Context, id string) (*model.CartItem, error) {
	return r.one(ctx, "SELECT "+cartColumns+" FROM cart_items WHERE id = $1", id)
}

func (r *CartPostgres) FindByCustomerProduct(ctx context.Context, customerID, productID string) (*model.CartItem, error) {
	return r.one(ctx, "SELECT "+cartColumns+" FROM cart_items WHERE customer_id = $1 AND product_id = $2", customerID, productID)
}

func (r *CartPostgres) one(ctx context.Context, q string, args ...any) (*model.CartItem, error) {
	c, err := scanCartItem(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, classify("cart item", err)
	}
	return &c, nil
}

func (r *CartPostgres) Create(ctx context.Context, c *model.CartItem) (*model.CartItem, error) {
	return r.one(ctx, `
		INSERT INTO cart_items (id, customer_id, product_id, quantity, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+cartColumns,
		c.ID, c.CustomerID, c.ProductID, c.Quantity, c.Price, c.CreatedAt, c.UpdatedAt,
	)
}

// Update writes quantity and the captured price.
func (r *CartPostgres) Update(ctx context.Context, c *model.CartItem) (*model.CartItem, error) {
	return r.one(ctx, `
		UPDATE cart_items SET quantity = $2, price = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+cartColumns,
		c.ID, c.Quantity, c.Price, c.UpdatedAt,
	)
}

func (r *CartPostgres) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.db, "cart item", `DELETE FROM cart_items WHERE id = $1`, id)
}

// DeleteByCustomer empties a cart. An already empty cart is not an error.
func (r *CartPostgres) DeleteByCustomer(ctx context.Context, customerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID)
	return classify("cart item", err)
}
