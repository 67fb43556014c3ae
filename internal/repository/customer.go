package repository

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

// CustomerRepository manages shoppers. Order counters are derived and only
// change through RefreshStats.
type CustomerRepository struct {
	base
}

func (r *CustomerRepository) GetAll(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.Customer]] {
	return list(ctx, r.base, "customers.list", store.CustomerSchema, d, func(s *store.Set) listFunc[model.Customer] {
		return s.Customers.List
	})
}

// ListAll returns every customer matching d, ignoring its page number. All rows
// come from one backend.
func (r *CustomerRepository) ListAll(ctx context.Context, d query.Descriptor) envelope.Envelope[[]model.Customer] {
	return listAll(ctx, r.base, "customers.list_all", store.CustomerSchema, d, func(s *store.Set) listFunc[model.Customer] {
		return s.Customers.List
	})
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) envelope.Envelope[*model.Customer] {
	return get(ctx, r.base, "customers.get", id, func(s *store.Set) findFunc[model.Customer] {
		return s.Customers.FindByID
	})
}

// GetByEmail matches case-insensitively; nil when no customer has the address.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) envelope.Envelope[*model.Customer] {
	email = normalizeEmail(email)
	if email == "" {
		return envelope.Fail[*model.Customer](apperr.Validation("email is required"))
	}
	return run(ctx, r.base, "customers.get_by_email", func(ctx context.Context, s *store.Set) (*model.Customer, error) {
		return orNil(s.Customers.FindByEmail(ctx, email))
	})
}

func (r *CustomerRepository) Create(ctx context.Context, in model.CustomerInput) envelope.Envelope[*model.Customer] {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.Customer](err)
	}
	now := r.now()
	c := &model.Customer{
		ID:        r.newID(),
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return run(ctx, r.base, "customers.create", func(ctx context.Context, s *store.Set) (*model.Customer, error) {
		if existing, err := s.Customers.FindByID(ctx, c.ID); err == nil {
			return existing, nil
		}
		if err := emailFree(ctx, s, c.Email, ""); err != nil {
			return nil, err
		}
		return s.Customers.Create(ctx, c)
	})
}

func (r *CustomerRepository) Update(ctx context.Context, id string, patch model.CustomerPatch) envelope.Envelope[*model.Customer] {
	if err := validID(id); err != nil {
		return envelope.Fail[*model.Customer](err)
	}
	if patch.Email != nil {
		e := normalizeEmail(*patch.Email)
		patch.Email = &e
	}
	if err := validateStruct(patch); err != nil {
		return envelope.Fail[*model.Customer](err)
	}
	now := r.now()
	return run(ctx, r.base, "customers.update", func(ctx context.Context, s *store.Set) (*model.Customer, error) {
		c, err := s.Customers.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if patch.Email != nil && *patch.Email != c.Email {
			if err := emailFree(ctx, s, *patch.Email, c.ID); err != nil {
				return nil, err
			}
			c.Email = *patch.Email
		}
		if patch.FirstName != nil {
			c.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			c.LastName = *patch.LastName
		}
		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}
		if patch.IsActive != nil {
			c.IsActive = *patch.IsActive
		}
		c.UpdatedAt = now
		return s.Customers.Update(ctx, c)
	})
}

// Delete deactivates a customer who has placed orders and removes one who
// has not.
func (r *CustomerRepository) Delete(ctx context.Context, id string) envelope.Envelope[any] {
	if err := validID(id); err != nil {
		return envelope.Fail[any](err)
	}
	now := r.now()
	return run(ctx, r.base, "customers.delete", func(ctx context.Context, s *store.Set) (any, error) {
		c, err := s.Customers.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		n, err := s.Orders.CountByCustomer(ctx, id)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, s.Customers.Delete(ctx, id)
		}
		if !c.IsActive {
			return nil, nil
		}
		c.IsActive = false
		c.UpdatedAt = now
		_, err = s.Customers.Update(ctx, c)
		return nil, err
	})
}

// RefreshStats recomputes total_orders and total_spent from the orders.
func (r *CustomerRepository) RefreshStats(ctx context.Context, id string) envelope.Envelope[*model.Customer] {
	if err := validID(id); err != nil {
		return envelope.Fail[*model.Customer](err)
	}
	return run(ctx, r.base, "customers.refresh_stats", func(ctx context.Context, s *store.Set) (*model.Customer, error) {
		return s.Customers.RefreshStats(ctx, id)
	})
}

func emailFree(ctx context.Context, s *store.Set, email, selfID string) error {
	other, err := s.Customers.FindByEmail(ctx, email)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return apperr.Conflict("email")
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
