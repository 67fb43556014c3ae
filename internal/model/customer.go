package model

import "time"

// Customer is a storefront shopper. TotalOrders and TotalSpent are derived
// from orders and never accepted from callers.
type Customer struct {
	ID          string    `json:"id" yaml:"id"`
	Email       string    `json:"email" yaml:"email"`
	FirstName   string    `json:"first_name" yaml:"first_name"`
	LastName    string    `json:"last_name" yaml:"last_name"`
	Phone       string    `json:"phone,omitempty" yaml:"phone"`
	IsActive    bool      `json:"is_active" yaml:"is_active"`
	TotalOrders int       `json:"total_orders" yaml:"total_orders"`
	TotalSpent  float64   `json:"total_spent" yaml:"total_spent"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// CustomerInput holds the attributes accepted on create.
type CustomerInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

// CustomerPatch holds the attributes accepted on update.
type CustomerPatch struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
	IsActive  *bool   `json:"is_active"`
}
