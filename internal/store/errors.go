package store

import "storefront/internal/apperr"

// ReferenceViolation is returned when a write would break a foreign key.
// constraint is the live schema's constraint name so both backends report
// the same message.
func ReferenceViolation(constraint string) error {
	return apperr.Validation("reference constraint violated: %s", constraint)
}

// Constraint names of the live schema.
const (
	FKOrderCustomer = "orders_customer_id_fkey"
	FKItemOrder     = "order_items_order_id_fkey"
	FKItemProduct   = "order_items_product_id_fkey"
	FKCartCustomer  = "cart_items_customer_id_fkey"
	FKCartProduct   = "cart_items_product_id_fkey"
)
