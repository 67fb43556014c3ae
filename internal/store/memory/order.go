package memory

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var orderFields = fields[model.Order]{
	"id":            func(o model.Order) any { return o.ID },
	"order_number":  func(o model.Order) any { return o.OrderNumber },
	"customer_id":   func(o model.Order) any { return o.CustomerID },
	"status":        func(o model.Order) any { return string(o.Status) },
	"total":         func(o model.Order) any { return o.Total },
	"shipping_name": func(o model.Order) any { return o.ShippingAddress.Name },
	"notes":         func(o model.Order) any { return o.Notes },
	"created_at":    func(o model.Order) any { return o.CreatedAt },
	"updated_at":    func(o model.Order) any { return o.UpdatedAt },
}

// OrderStore is the fallback store.OrderStore. It also implements
// store.AtomicOrderCreator: the dataset lock makes a compound write
// all-or-nothing.
type OrderStore struct {
	ds *Dataset
}

var (
	_ store.OrderStore         = (*OrderStore)(nil)
	_ store.AtomicOrderCreator = (*OrderStore)(nil)
)

func (s *OrderStore) List(_ context.Context, d query.Descriptor) ([]model.Order, int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	page, total := apply(s.ds.orders, d, orderFields, func(o model.Order) string { return o.ID })
	out := make([]model.Order, len(page))
	for i, o := range page {
		out[i] = o.Clone()
	}
	return out, total, nil
}

func (s *OrderStore) FindByID(_ context.Context, id string) (*model.Order, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	i := s.ds.orderIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("order")
	}
	o := s.ds.orders[i].Clone()
	return &o, nil
}

func (s *OrderStore) InsertHeader(_ context.Context, o *model.Order) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	if err := s.checkHeaderLocked(o); err != nil {
		return err
	}
	h := *o
	h.Items = nil
	s.ds.orders = append(s.ds.orders, h)
	return nil
}

func (s *OrderStore) InsertItem(_ context.Context, it *model.OrderItem) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.orderIndex(it.OrderID)
	if i < 0 {
		return store.ReferenceViolation(store.FKItemOrder)
	}
	if s.ds.productIndex(it.ProductID) < 0 {
		return store.ReferenceViolation(store.FKItemProduct)
	}
	s.ds.orders[i].Items = append(s.ds.orders[i].Items, *it)
	return nil
}

func (s *OrderStore) CreateAtomic(_ context.Context, o *model.Order) (*model.Order, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	if err := s.checkHeaderLocked(o); err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if it.OrderID != o.ID {
			return nil, store.ReferenceViolation(store.FKItemOrder)
		}
		if s.ds.productIndex(it.ProductID) < 0 {
			return nil, store.ReferenceViolation(store.FKItemProduct)
		}
	}
	s.ds.orders = append(s.ds.orders, o.Clone())
	out := o.Clone()
	return &out, nil
}

func (s *OrderStore) UpdateHeader(_ context.Context, o *model.Order) (*model.Order, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.orderIndex(o.ID)
	if i < 0 {
		return nil, apperr.NotFound("order")
	}
	cur := &s.ds.orders[i]
	cur.Status = o.Status
	cur.ShippingAddress = o.ShippingAddress
	cur.Notes = o.Notes
	cur.Total = o.Total
	cur.UpdatedAt = o.UpdatedAt
	out := cur.Clone()
	return &out, nil
}

func (s *OrderStore) Delete(_ context.Context, id string) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.orderIndex(id)
	if i < 0 {
		return apperr.NotFound("order")
	}
	s.ds.orders = append(s.ds.orders[:i], s.ds.orders[i+1:]...)
	return nil
}

func (s *OrderStore) CountByCustomer(_ context.Context, customerID string) (int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	n := 0
	for _, o := range s.ds.orders {
		if o.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (s *OrderStore) checkHeaderLocked(o *model.Order) error {
	if s.ds.orderIndex(o.ID) >= 0 {
		return apperr.Conflict("id")
	}
	for _, existing := range s.ds.orders {
		if existing.OrderNumber == o.OrderNumber {
			return apperr.Conflict("order_number")
		}
	}
	if s.ds.customerIndex(o.CustomerID) < 0 {
		return store.ReferenceViolation(store.FKOrderCustomer)
	}
	return nil
}
