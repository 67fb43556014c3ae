package model

import "time"

// Product is a catalog entry. Slug is unique and URL-safe; StockQuantity is
// never negative.
type Product struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Slug          string    `json:"slug" yaml:"slug"`
	Description   string    `json:"description" yaml:"description"`
	Price         float64   `json:"price" yaml:"price"`
	StockQuantity int       `json:"stock_quantity" yaml:"stock_quantity"`
	Category      string    `json:"category" yaml:"category"`
	IsActive      bool      `json:"is_active" yaml:"is_active"`
	Tags          []string  `json:"tags" yaml:"tags"`
	ImageKey      string    `json:"image_key,omitempty" yaml:"image_key"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

// ProductInput holds the attributes accepted on create.
type ProductInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Slug          string   `json:"slug" validate:"omitempty,slug,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Price         float64  `json:"price" validate:"gte=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	Category      string   `json:"category" validate:"required,max=100"`
	IsActive      *bool    `json:"is_active"`
	Tags          []string `json:"tags" validate:"dive,required,max=50"`
}

// ProductPatch holds the attributes accepted on update. Nil means unchanged.
type ProductPatch struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Slug          *string   `json:"slug" validate:"omitempty,slug,max=200"`
	Description   *string   `json:"description" validate:"omitempty,max=5000"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	StockQuantity *int      `json:"stock_quantity" validate:"omitempty,gte=0"`
	Category      *string   `json:"category" validate:"omitempty,min=1,max=100"`
	IsActive      *bool     `json:"is_active"`
	Tags          *[]string `json:"tags"`
	ImageKey      *string   `json:"-"`
}
