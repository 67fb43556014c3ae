package model

import (
	"math"
	"slices"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"

	// OrderPartial marks an order header whose items were not all written.
	// It is only ever set by the two-phase create path.
	OrderPartial OrderStatus = "partial"
)

// OrderStatuses lists the statuses a caller may request.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderPartial:    {OrderPending, OrderCancelled},
}

// Valid reports whether s is a caller-visible status.
func (s OrderStatus) Valid() bool {
	return slices.Contains(OrderStatuses, s)
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == next || slices.Contains(orderTransitions[s], next)
}

// Address is a shipping address.
type Address struct {
	Name       string `json:"name" yaml:"name" validate:"required"`
	Line1      string `json:"line1" yaml:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty" yaml:"line2"`
	City       string `json:"city" yaml:"city" validate:"required"`
	PostalCode string `json:"postal_code" yaml:"postal_code" validate:"required"`
	Country    string `json:"country" yaml:"country" validate:"required,len=2"`
}

// Order is a customer order. Total always equals the sum of item subtotals.
type Order struct {
	ID              string      `json:"id" yaml:"id"`
	OrderNumber     string      `json:"order_number" yaml:"order_number"`
	CustomerID      string      `json:"customer_id" yaml:"customer_id"`
	Status          OrderStatus `json:"status" yaml:"status"`
	Items           []OrderItem `json:"items" yaml:"items"`
	Total           float64     `json:"total" yaml:"total"`
	ShippingAddress Address     `json:"shipping_address" yaml:"shipping_address"`
	Notes           string      `json:"notes,omitempty" yaml:"notes"`
	CreatedAt       time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" yaml:"updated_at"`
}

// OrderItem is a line of an order. UnitPrice is the price at order time.
type OrderItem struct {
	ID          string  `json:"id" yaml:"id"`
	OrderID     string  `json:"order_id" yaml:"order_id"`
	ProductID   string  `json:"product_id" yaml:"product_id"`
	ProductName string  `json:"product_name" yaml:"product_name"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	UnitPrice   float64 `json:"unit_price" yaml:"unit_price"`
}

// Subtotal is quantity times the snapshot price.
func (i OrderItem) Subtotal() float64 {
	return RoundMoney(float64(i.Quantity) * i.UnitPrice)
}

// Recalculate derives Total from the items.
func (o *Order) Recalculate() {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	o.Total = RoundMoney(sum)
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

// OrderLine is a requested line on create.
type OrderLine struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// OrderInput holds the attributes accepted on create. Prices and the total
// are never taken from the caller.
type OrderInput struct {
	CustomerID      string      `json:"customer_id" validate:"required,uuid"`
	Status          OrderStatus `json:"status"`
	Lines           []OrderLine `json:"items" validate:"required,min=1,dive"`
	ShippingAddress Address     `json:"shipping_address"`
	Notes           string      `json:"notes" validate:"max=1000"`
}

// OrderPatch holds the attributes accepted on update.
type OrderPatch struct {
	Status          *OrderStatus `json:"status"`
	ShippingAddress *Address     `json:"shipping_address"`
	Notes           *string      `json:"notes" validate:"omitempty,max=1000"`
}

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// CheckoutInput holds what a customer supplies when turning the cart into an
// order.
type CheckoutInput struct {
	ShippingAddress Address `json:"shipping_address"`
	Notes           string  `json:"notes" validate:"max=1000"`
}

// OrderDetail is an order with its customer embedded. Customer is nil when the
// customer row no longer exists.
type OrderDetail struct {
	Order
	Customer *Customer `json:"customer"`
}
