package memory

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var productFields = fields[model.Product]{
	"id":             func(p model.Product) any { return p.ID },
	"name":           func(p model.Product) any { return p.Name },
	"slug":           func(p model.Product) any { return p.Slug },
	"description":    func(p model.Product) any { return p.Description },
	"category":       func(p model.Product) any { return p.Category },
	"is_active":      func(p model.Product) any { return p.IsActive },
	"price":          func(p model.Product) any { return p.Price },
	"stock_quantity": func(p model.Product) any { return p.StockQuantity },
	"created_at":     func(p model.Product) any { return p.CreatedAt },
	"updated_at":     func(p model.Product) any { return p.UpdatedAt },
}

// ProductStore is the fallback store.ProductStore.
type ProductStore struct {
	ds *Dataset
}

var _ store.ProductStore = (*ProductStore)(nil)

func (s *ProductStore) List(_ context.Context, d query.Descriptor) ([]model.Product, int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	page, total := apply(s.ds.products, d, productFields, func(p model.Product) string { return p.ID })
	out := make([]model.Product, len(page))
	for i, p := range page {
		out[i] = p.Clone()
	}
	return out, total, nil
}

func (s *ProductStore) FindByID(_ context.Context, id string) (*model.Product, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	i := s.ds.productIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("product")
	}
	p := s.ds.products[i].Clone()
	return &p, nil
}

func (s *ProductStore) FindBySlug(_ context.Context, slug string) (*model.Product, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	for _, p := range s.ds.products {
		if p.Slug == slug {
			c := p.Clone()
			return &c, nil
		}
	}
	return nil, apperr.NotFound("product")
}

func (s *ProductStore) Create(_ context.Context, p *model.Product) (*model.Product, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	if s.ds.productIndex(p.ID) >= 0 {
		return nil, apperr.Conflict("id")
	}
	if s.slugTakenLocked(p.Slug, p.ID) {
		return nil, apperr.Conflict("slug")
	}
	s.ds.products = append(s.ds.products, p.Clone())
	out := p.Clone()
	return &out, nil
}

func (s *ProductStore) Update(_ context.Context, p *model.Product) (*model.Product, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.productIndex(p.ID)
	if i < 0 {
		return nil, apperr.NotFound("product")
	}
	if s.slugTakenLocked(p.Slug, p.ID) {
		return nil, apperr.Conflict("slug")
	}
	s.ds.products[i] = p.Clone()
	out := p.Clone()
	return &out, nil
}

func (s *ProductStore) Delete(_ context.Context, id string) error {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	i := s.ds.productIndex(id)
	if i < 0 {
		return apperr.NotFound("product")
	}
	for _, o := range s.ds.orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return store.ReferenceViolation(store.FKItemProduct)
			}
		}
	}
	s.ds.products = append(s.ds.products[:i], s.ds.products[i+1:]...)
	s.ds.dropCartWhere(func(c model.CartItem) bool { return c.ProductID != id })
	return nil
}

func (s *ProductStore) slugTakenLocked(slug, exceptID string) bool {
	for _, p := range s.ds.products {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}
