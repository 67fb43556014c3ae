package model

import "time"

// CartItem is a product in a customer's cart. (CustomerID, ProductID) is
// unique; Price is the product price when the item was added.
type CartItem struct {
	ID         string    `json:"id" yaml:"id"`
	CustomerID string    `json:"customer_id" yaml:"customer_id"`
	ProductID  string    `json:"product_id" yaml:"product_id"`
	Quantity   int       `json:"quantity" yaml:"quantity"`
	Price      float64   `json:"price" yaml:"price"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// CartItemInput holds the attributes accepted on create.
type CartItemInput struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	ProductID  string `json:"product_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

// CartItemPatch holds the attributes accepted on update.
type CartItemPatch struct {
	Quantity *int `json:"quantity" validate:"omitempty,gt=0"`
}

// CartSummary is the recomputed money breakdown of a cart.
type CartSummary struct {
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
	Shipping  float64 `json:"shipping"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
}

// CartView is what every cart mutation returns.
type CartView struct {
	Items   []CartItem  `json:"items"`
	Summary CartSummary `json:"summary"`
}
