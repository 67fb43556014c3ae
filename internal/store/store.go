// Package store declares the persistence contracts implemented by the live
// Postgres backend (store/postgres) and the in-memory fallback dataset
// (store/memory).
//
// Stores report failures with apperr kinds: a missing row is KindNotFound,
// a uniqueness violation KindConflict, and anything wrong with the backend
// itself KindBackend. Stores contain no business rules beyond the schema
// constraints both backends enforce.
package store

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/query"
)

// ProductStore persists products.
type ProductStore interface {
	List(ctx context.Context, d query.Descriptor) ([]model.Product, int, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// OrderStore persists orders and their items. Listing and lookups always
// return orders with their items embedded.
type OrderStore interface {
	List(ctx context.Context, d query.Descriptor) ([]model.Order, int, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	InsertHeader(ctx context.Context, o *model.Order) error
	InsertItem(ctx context.Context, it *model.OrderItem) error
	UpdateHeader(ctx context.Context, o *model.Order) (*model.Order, error)
	Delete(ctx context.Context, id string) error
	CountByCustomer(ctx context.Context, customerID string) (int, error)
}

// AtomicOrderCreator is implemented by order stores that can write an order
// and all of its items as one all-or-nothing unit.
type AtomicOrderCreator interface {
	CreateAtomic(ctx context.Context, o *model.Order) (*model.Order, error)
}

// CustomerStore persists customers.
type CustomerStore interface {
	List(ctx context.Context, d query.Descriptor) ([]model.Customer, int, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Delete(ctx context.Context, id string) error
	// RefreshStats recomputes the derived order counters from the orders table.
	RefreshStats(ctx context.Context, id string) (*model.Customer, error)
}

// AdminUserStore persists dashboard users.
type AdminUserStore interface {
	List(ctx context.Context, d query.Descriptor) ([]model.AdminUser, int, error)
	FindByID(ctx context.Context, id string) (*model.AdminUser, error)
	FindByUserID(ctx context.Context, userID string) (*model.AdminUser, error)
	Create(ctx context.Context, a *model.AdminUser) (*model.AdminUser, error)
	Update(ctx context.Context, a *model.AdminUser) (*model.AdminUser, error)
	Delete(ctx context.Context, id string) error
}

// CartStore persists cart items.
type CartStore interface {
	List(ctx context.Context, d query.Descriptor) ([]model.CartItem, int, error)
	FindByID(ctx context.Context, id string) (*model.CartItem, error)
	FindByCustomerProduct(ctx context.Context, customerID, productID string) (*model.CartItem, error)
	Create(ctx context.Context, c *model.CartItem) (*model.CartItem, error)
	Update(ctx context.Context, c *model.CartItem) (*model.CartItem, error)
	Delete(ctx context.Context, id string) error
	DeleteByCustomer(ctx context.Context, customerID string) error
}

// MetricStore persists analytics metrics. It is append-only.
type MetricStore interface {
	List(ctx context.Context, d query.Descriptor) ([]model.AnalyticsMetric, int, error)
	FindByID(ctx context.Context, id string) (*model.AnalyticsMetric, error)
	Create(ctx context.Context, m *model.AnalyticsMetric) (*model.AnalyticsMetric, error)
}

// Set bundles one backend's stores. A repository call runs entirely against a
// single Set so live and fallback data are never mixed in one call chain.
type Set struct {
	Name      string
	Products  ProductStore
	Orders    OrderStore
	Customers CustomerStore
	Admins    AdminUserStore
	Cart      CartStore
	Metrics   MetricStore
}
