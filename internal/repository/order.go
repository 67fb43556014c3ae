package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/logging"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

// OrderRepository manages orders and their items.
type OrderRepository struct {
	base
}

func (r *OrderRepository) GetAll(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.Order]] {
	return list(ctx, r.base, "orders.list", store.OrderSchema, d, func(s *store.Set) listFunc[model.Order] {
		return s.Orders.List
	})
}

// ListAll returns every order matching d, ignoring its page number. All rows
// come from one backend.
func (r *OrderRepository) ListAll(ctx context.Context, d query.Descriptor) envelope.Envelope[[]model.Order] {
	return listAll(ctx, r.base, "orders.list_all", store.OrderSchema, d, func(s *store.Set) listFunc[model.Order] {
		return s.Orders.List
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) envelope.Envelope[*model.Order] {
	return get(ctx, r.base, "orders.get", id, func(s *store.Set) findFunc[model.Order] {
		return s.Orders.FindByID
	})
}

// GetAllDetailed lists orders with their customers embedded. Customers are
// read from the same backend as the orders.
func (r *OrderRepository) GetAllDetailed(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.OrderDetail]] {
	if err := d.Validate(store.OrderSchema); err != nil {
		return envelope.Fail[query.Page[model.OrderDetail]](err)
	}
	d = d.Resolve(store.OrderSchema)
	return run(ctx, r.base, "orders.list_detailed", func(ctx context.Context, s *store.Set) (query.Page[model.OrderDetail], error) {
		orders, total, err := s.Orders.List(ctx, d)
		if err != nil {
			return query.Page[model.OrderDetail]{}, err
		}
		customers := make(map[string]*model.Customer)
		out := make([]model.OrderDetail, 0, len(orders))
		for _, o := range orders {
			c, seen := customers[o.CustomerID]
			if !seen {
				c, err = orNil(s.Customers.FindByID(ctx, o.CustomerID))
				if err != nil {
					return query.Page[model.OrderDetail]{}, err
				}
				customers[o.CustomerID] = c
			}
			out = append(out, model.OrderDetail{Order: o, Customer: c})
		}
		return query.NewPage(out, total, d), nil
	})
}

// Create places an order. Prices and product names are copied from the
// catalogue at this moment and the total is derived from the items.
func (r *OrderRepository) Create(ctx context.Context, in model.OrderInput) envelope.Envelope[*model.Order] {
	if in.Status == "" {
		in.Status = model.OrderPending
	}
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.Order](err)
	}
	if !in.Status.Valid() {
		return envelope.Fail[*model.Order](apperr.Validation("invalid status %q", in.Status))
	}
	draft := r.draft(in.CustomerID, in.Status, in.ShippingAddress, in.Notes)
	return run(ctx, r.base, "orders.create", func(ctx context.Context, s *store.Set) (*model.Order, error) {
		created, err := s.Orders.FindByID(ctx, draft.ID)
		if err != nil {
			o, err := r.build(ctx, s, draft, in.Lines)
			if err != nil {
				return nil, err
			}
			if created, err = writeOrder(ctx, s, o); err != nil {
				return nil, err
			}
		}
		refreshStats(ctx, s, created.CustomerID)
		return created, nil
	})
}

// Checkout turns the customer's cart into a pending order and empties the
// cart.
func (r *OrderRepository) Checkout(ctx context.Context, customerID string, in model.CheckoutInput) envelope.Envelope[*model.Order] {
	if err := validID(customerID); err != nil {
		return envelope.Fail[*model.Order](err)
	}
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.Order](err)
	}
	draft := r.draft(customerID, model.OrderPending, in.ShippingAddress, in.Notes)
	return run(ctx, r.base, "orders.checkout", func(ctx context.Context, s *store.Set) (*model.Order, error) {
		// an earlier attempt of this call may have written the order and
		// failed before the cart was cleared
		created, err := s.Orders.FindByID(ctx, draft.ID)
		if err != nil {
			items, err := cartItems(ctx, s, customerID)
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return nil, apperr.Validation("cart is empty")
			}
			lines := make([]model.OrderLine, len(items))
			for i, it := range items {
				lines[i] = model.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
			}
			o, err := r.build(ctx, s, draft, lines)
			if err != nil {
				return nil, err
			}
			if created, err = writeOrder(ctx, s, o); err != nil {
				return nil, err
			}
		}
		if err := s.Cart.DeleteByCustomer(ctx, customerID); err != nil {
			logging.Warn("repository", "cart_clear_failed", map[string]any{
				"customer_id": customerID,
				"order_id":    created.ID,
				"error":       err.Error(),
			})
		}
		refreshStats(ctx, s, customerID)
		return created, nil
	})
}

// Update changes the status, shipping address or notes of an order. Status
// changes must follow the order lifecycle.
func (r *OrderRepository) Update(ctx context.Context, id string, patch model.OrderPatch) envelope.Envelope[*model.Order] {
	if err := validID(id); err != nil {
		return envelope.Fail[*model.Order](err)
	}
	if err := validateStruct(patch); err != nil {
		return envelope.Fail[*model.Order](err)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return envelope.Fail[*model.Order](apperr.Validation("invalid status %q", *patch.Status))
	}
	now := r.now()
	return run(ctx, r.base, "orders.update", func(ctx context.Context, s *store.Set) (*model.Order, error) {
		o, err := s.Orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		statusChanged := false
		if patch.Status != nil {
			if !o.Status.CanTransitionTo(*patch.Status) {
				return nil, apperr.Validation("order cannot move from %s to %s", o.Status, *patch.Status)
			}
			statusChanged = o.Status != *patch.Status
			o.Status = *patch.Status
		}
		if patch.ShippingAddress != nil {
			o.ShippingAddress = *patch.ShippingAddress
		}
		if patch.Notes != nil {
			o.Notes = *patch.Notes
		}
		o.Recalculate()
		o.UpdatedAt = now
		updated, err := s.Orders.UpdateHeader(ctx, o)
		if err != nil {
			return nil, err
		}
		if statusChanged {
			refreshStats(ctx, s, o.CustomerID)
		}
		return updated, nil
	})
}

// Delete cancels an order that has items and removes an empty one.
func (r *OrderRepository) Delete(ctx context.Context, id string) envelope.Envelope[any] {
	if err := validID(id); err != nil {
		return envelope.Fail[any](err)
	}
	now := r.now()
	return run(ctx, r.base, "orders.delete", func(ctx context.Context, s *store.Set) (any, error) {
		o, err := s.Orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(o.Items) == 0 {
			if err := s.Orders.Delete(ctx, id); err != nil {
				return nil, err
			}
		} else if o.Status != model.OrderCancelled {
			o.Status = model.OrderCancelled
			o.UpdatedAt = now
			if _, err := s.Orders.UpdateHeader(ctx, o); err != nil {
				return nil, err
			}
		}
		refreshStats(ctx, s, o.CustomerID)
		return nil, nil
	})
}

// draft fixes the id and order number outside the backend call so a retried
// attempt writes the same order.
func (r *OrderRepository) draft(customerID string, status model.OrderStatus, addr model.Address, notes string) model.Order {
	now := r.now()
	id := r.newID()
	return model.Order{
		ID:              id,
		OrderNumber:     orderNumber(id, now),
		CustomerID:      customerID,
		Status:          status,
		ShippingAddress: addr,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// build checks the customer and products on s and snapshots the line prices.
func (r *OrderRepository) build(ctx context.Context, s *store.Set, draft model.Order, lines []model.OrderLine) (*model.Order, error) {
	c, err := s.Customers.FindByID(ctx, draft.CustomerID)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return nil, apperr.Validation("customer %s does not exist", draft.CustomerID)
	case err != nil:
		return nil, err
	case !c.IsActive:
		return nil, apperr.Validation("customer %s is inactive", draft.CustomerID)
	}

	o := draft.Clone()
	o.Items = make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, err := s.Products.FindByID(ctx, l.ProductID)
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			return nil, apperr.Validation("product %s does not exist", l.ProductID)
		case err != nil:
			return nil, err
		case !p.IsActive:
			return nil, apperr.Validation("product %s is not available", l.ProductID)
		}
		o.Items = append(o.Items, model.OrderItem{
			ID:          r.newID(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
		})
	}
	o.Recalculate()
	return &o, nil
}

// writeOrder persists o in one unit when the store supports it. Otherwise the
// header is written as partial, then each item, then the header is flipped
// to its requested status.
func writeOrder(ctx context.Context, s *store.Set, o *model.Order) (*model.Order, error) {
	if atomic, ok := s.Orders.(store.AtomicOrderCreator); ok {
		return atomic.CreateAtomic(ctx, o)
	}

	header := o.Clone()
	header.Items = nil
	header.Status = model.OrderPartial
	header.Total = 0
	if err := s.Orders.InsertHeader(ctx, &header); err != nil {
		return nil, err
	}
	for i := range o.Items {
		if err := s.Orders.InsertItem(ctx, &o.Items[i]); err != nil {
			return nil, apperr.PartialOrder(o.ID, err)
		}
	}
	done, err := s.Orders.UpdateHeader(ctx, o)
	if err != nil {
		return nil, apperr.PartialOrder(o.ID, err)
	}
	return done, nil
}

// refreshStats is best effort: the order write already succeeded.
func refreshStats(ctx context.Context, s *store.Set, customerID string) {
	if _, err := s.Customers.RefreshStats(ctx, customerID); err != nil {
		logging.Warn("repository", "customer_stats_refresh_failed", map[string]any{
			"customer_id": customerID,
			"backend":     s.Name,
			"error":       err.Error(),
		})
	}
}

func cartItems(ctx context.Context, s *store.Set, customerID string) ([]model.CartItem, error) {
	d := query.New(
		query.WithFilter("customer_id", customerID),
		query.WithSort("created_at", query.Asc),
		query.WithPage(1, query.MaxPageSize),
	)
	return collect(ctx, d, s.Cart.List)
}

func orderNumber(id string, at time.Time) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[len(short)-8:]
	}
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), strings.ToUpper(short))
}
