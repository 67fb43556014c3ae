package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var productTable = table{
	name:    "products",
	entity:  "product",
	columns: "id, name, slug, description, price, stock_quantity, category, is_active, tags::text, image_key, created_at, updated_at",
	exprs: map[string]string{
		"id":             "id",
		"name":           "name",
		"slug":           "slug",
		"description":    "description",
		"price":          "price",
		"stock_quantity": "stock_quantity",
		"category":       "category",
		"is_active":      "is_active",
		"created_at":     "created_at",
		"updated_at":     "updated_at",
	},
}

// ProductPostgres is the live store.ProductStore.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres store.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ store.ProductStore = (*ProductPostgres)(nil)

func scanProduct(s scanner) (model.Product, error) {
	var (
		p    model.Product
		tags pq.StringArray
	)
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.Category,
		&p.IsActive,
		&tags,
		&p.ImageKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}
	p.Tags = nonNil(tags)
	return p, nil
}

func (r *ProductPostgres) List(ctx context.Context, d query.Descriptor) ([]model.Product, int, error) {
	return list(ctx, r.db, productTable, d, scanProduct)
}

func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findBy(ctx, "id", id)
}

func (r *ProductPostgres) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findBy(ctx, "slug", slug)
}

func (r *ProductPostgres) findBy(ctx context.Context, col, v string) (*model.Product, error) {
	q := "SELECT " + productTable.columns + " FROM products WHERE " + col + " = $1"
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, v))
	if err != nil {
		return nil, classify("product", err)
	}
	return &p, nil
}

// Create inserts a product and returns the stored row.
func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	q := `
		INSERT INTO products (id, name, slug, description, price, stock_quantity, category, is_active, tags, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + productTable.columns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.StockQuantity,
		p.Category,
		p.IsActive,
		pq.Array(nonNil(p.Tags)),
		p.ImageKey,
		p.CreatedAt,
		p.UpdatedAt,
	)
	out, err := scanProduct(row)
	if err != nil {
		return nil, classify("product", err)
	}
	return &out, nil
}

// Update replaces every mutable column of p.
func (r *ProductPostgres) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	q := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5, stock_quantity = $6,
		    category = $7, is_active = $8, tags = $9, image_key = $10, updated_at = $11
		WHERE id = $1
		RETURNING ` + productTable.columns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.StockQuantity,
		p.Category,
		p.IsActive,
		pq.Array(nonNil(p.Tags)),
		p.ImageKey,
		p.UpdatedAt,
	)
	out, err := scanProduct(row)
	if err != nil {
		return nil, classify("product", err)
	}
	return &out, nil
}

// Delete removes a product. Cart rows go with it; order items block it.
func (r *ProductPostgres) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.db, "product", `DELETE FROM products WHERE id = $1`, id)
}
