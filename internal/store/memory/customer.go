package memory

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var customerFields = fields[model.Customer]{
	"id":           func(c model.Customer) any { return c.ID },
	"email":        func(c model.Customer) any { return c.Email },
	"first_name":   func(c model.Customer) any { return c.FirstName },
	"last_name":    func(c model.Customer) any { return c.LastName },
	"phone":        func(c model.Customer) any { return c.Phone },
	"is_active":    func(c model.Customer) any { return c.IsActive },
	"total_orders": func(c model.Customer) any { return c.TotalOrders },
	"total_spent":  func(c model.Customer) any { return c.TotalSpent },
	"created_at":   func(c model.Customer) any { return c.CreatedAt },
}

// CustomerStore is the fallback store.CustomerStore.
type CustomerStore struct {
	ds *Dataset
}

var _ store.CustomerStore = (*CustomerStore)(nil)

func (s *CustomerStore) List(_ context.Context, d query.Descriptor) ([]model.Customer, int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	page, total := apply(s.ds.customers, d, customerFields, func(c model.Customer) string { return c.ID })
	return append([]model.Customer{}, page...), total, nil
}

func (s *CustomerStore) FindByID(_ context.Context, id string) (*model.Customer, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	i := s.ds.customerIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("customer")
	}
	c := s.ds.customers[i]
	return &c, nil
}

func (s *CustomerStore) FindByEmail(_ context.Context, email string) (*model.Customer, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	for _, c := range s.ds.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("customer")
}

func (s *CustomerStore) Create(_ context.Context, c *model.Customer) (*model.Customer, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	if s.ds.customerIndex(c.ID) >= 0 {
		return nil, apperr.Conflict("id")
	}
	if s.emailTakenLocked(c.Email, c.ID) {
		return nil, apperr.Conflict("email")
	}
	s.ds.customers = append(s.ds.customers, *c)
	out := *c
	return &out, nil
}

func (s *CustomerStore) Update(_ context.Context, c *model.Customer) (*model.Customer, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.customerIndex(c.ID)
	if i < 0 {
		return nil, apperr.NotFound("customer")
	}
	if s.emailTakenLocked(c.Email, c.ID) {
		return nil, apperr.Conflict("email")
	}
	// Counters are derived; an update never overwrites them.
	next := *c
	next.TotalOrders = s.ds.customers[i].TotalOrders
	next.TotalSpent = s.ds.customers[i].TotalSpent
	s.ds.customers[i] = next
	return &next, nil
}

func (s *CustomerStore) Delete(_ context.Context, id string) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.customerIndex(id)
	if i < 0 {
		return apperr.NotFound("customer")
	}
	for _, o := range s.ds.orders {
		if o.CustomerID == id {
			return store.ReferenceViolation(store.FKOrderCustomer)
		}
	}
	s.ds.customers = append(s.ds.customers[:i], s.ds.customers[i+1:]...)
	s.ds.dropCartWhere(func(c model.CartItem) bool { return c.CustomerID != id })
	return nil
}

func (s *CustomerStore) RefreshStats(_ context.Context, id string) (*model.Customer, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.customerIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("customer")
	}
	s.ds.refreshStatsLocked(i)
	c := s.ds.customers[i]
	return &c, nil
}

func (s *CustomerStore) emailTakenLocked(email, exceptID string) bool {
	for _, c := range s.ds.customers {
		if c.Email == email && c.ID != exceptID {
			return true
		}
	}
	return false
}
