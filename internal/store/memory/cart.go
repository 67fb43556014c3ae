package memory

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var cartFields = fields[model.CartItem]{
	"id":          func(c model.CartItem) any { return c.ID },
	"customer_id": func(c model.CartItem) any { return c.CustomerID },
	"product_id":  func(c model.CartItem) any { return c.ProductID },
	"quantity":    func(c model.CartItem) any { return c.Quantity },
	"price":       func(c model.CartItem) any { return c.Price },
	"created_at":  func(c model.CartItem) any { return c.CreatedAt },
}

// CartStore is the fallback store.CartStore.
type CartStore struct {
	ds *Dataset
}

var _ store.CartStore = (*CartStore)(nil)

func (s *CartStore) List(_ context.Context, d query.Descriptor) ([]model.CartItem, int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	page, total := apply(s.ds.cart, d, cartFields, func(c model.CartItem) string { return c.ID })
	return append([]model.CartItem{}, page...), total, nil
}

func (s *CartStore) FindByID(_ context.Context, id string) (*model.CartItem, error) {
	return s.find(func(c model.CartItem) bool { return c.ID == id })
}

func (s *CartStore) FindByCustomerProduct(_ context.Context, customerID, productID string) (*model.CartItem, error) {
	return s.find(func(c model.CartItem) bool { return c.CustomerID == customerID && c.ProductID == productID })
}

func (s *CartStore) Create(_ context.Context, c *model.CartItem) (*model.CartItem, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	if s.ds.customerIndex(c.CustomerID) < 0 {
		return nil, store.ReferenceViolation(store.FKCartCustomer)
	}
	if s.ds.productIndex(c.ProductID) < 0 {
		return nil, store.ReferenceViolation(store.FKCartProduct)
	}
	for _, existing := range s.ds.cart {
		if existing.ID == c.ID {
			return nil, apperr.Conflict("id")
		}
		if existing.CustomerID == c.CustomerID && existing.ProductID == c.ProductID {
			return nil, apperr.Conflict("cart item")
		}
	}
	s.ds.cart = append(s.ds.cart, *c)
	out := *c
	return &out, nil
}

func (s *CartStore) Update(_ context.Context, c *model.CartItem) (*model.CartItem, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	for i := range s.ds.cart {
		if s.ds.cart[i].ID == c.ID {
			s.ds.cart[i].Quantity = c.Quantity
			s.ds.cart[i].Price = c.Price
			s.ds.cart[i].UpdatedAt = c.UpdatedAt
			out := s.ds.cart[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("cart item")
}

func (s *CartStore) Delete(_ context.Context, id string) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	for i := range s.ds.cart {
		if s.ds.cart[i].ID == id {
			s.ds.cart = append(s.ds.cart[:i], s.ds.cart[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("cart item")
}

func (s *CartStore) DeleteByCustomer(_ context.Context, customerID string) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	s.ds.dropCartWhere(func(c model.CartItem) bool { return c.CustomerID != customerID })
	return nil
}

func (s *CartStore) find(match func(model.CartItem) bool) (*model.CartItem, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	for _, c := range s.ds.cart {
		if match(c) {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("cart item")
}
