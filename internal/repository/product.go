package repository

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

// ProductRepository manages the catalogue.
type ProductRepository struct {
	base
}

func (r *ProductRepository) GetAll(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.Product]] {
	return list(ctx, r.base, "products.list", store.ProductSchema, d, func(s *store.Set) listFunc[model.Product] {
		return s.Products.List
	})
}

// ListAll returns every product matching d, ignoring its page number. All rows
// come from one backend.
func (r *ProductRepository) ListAll(ctx context.Context, d query.Descriptor) envelope.Envelope[[]model.Product] {
	return listAll(ctx, r.base, "products.list_all", store.ProductSchema, d, func(s *store.Set) listFunc[model.Product] {
		return s.Products.List
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) envelope.Envelope[*model.Product] {
	return get(ctx, r.base, "products.get", id, func(s *store.Set) findFunc[model.Product] {
		return s.Products.FindByID
	})
}

// GetBySlug returns the product with slug, or nil.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) envelope.Envelope[*model.Product] {
	if slug == "" {
		return envelope.Fail[*model.Product](apperr.Validation("slug is required"))
	}
	return run(ctx, r.base, "products.get_by_slug", func(ctx context.Context, s *store.Set) (*model.Product, error) {
		return orNil(s.Products.FindBySlug(ctx, slug))
	})
}

// Related returns up to n active products from p's category, newest first,
// excluding p itself.
func (r *ProductRepository) Related(ctx context.Context, p model.Product, n int) envelope.Envelope[[]model.Product] {
	if n <= 0 {
		return envelope.OK([]model.Product{})
	}
	d := query.New(
		query.WithFilter("category", p.Category),
		query.WithFilter("is_active", true),
		query.WithSort("created_at", query.Desc),
		query.WithPage(1, n+1),
	)
	return run(ctx, r.base, "products.related", func(ctx context.Context, s *store.Set) ([]model.Product, error) {
		items, _, err := s.Products.List(ctx, d)
		if err != nil {
			return nil, err
		}
		out := make([]model.Product, 0, n)
		for _, it := range items {
			if it.ID != p.ID && len(out) < n {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

// Create validates in, derives the slug from the name when none is given and
// rejects a slug that is already taken.
func (r *ProductRepository) Create(ctx context.Context, in model.ProductInput) envelope.Envelope[*model.Product] {
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.Product](err)
	}
	if in.Slug == "" {
		return envelope.Fail[*model.Product](apperr.Validation("slug cannot be derived from name %q", in.Name))
	}

	now := r.now()
	p := &model.Product{
		ID:            r.newID(),
		Name:          in.Name,
		Slug:          in.Slug,
		Description:   in.Description,
		Price:         model.RoundMoney(in.Price),
		StockQuantity: in.StockQuantity,
		Category:      in.Category,
		IsActive:      in.IsActive == nil || *in.IsActive,
		Tags:          dedupe(in.Tags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return run(ctx, r.base, "products.create", func(ctx context.Context, s *store.Set) (*model.Product, error) {
		if existing, err := s.Products.FindByID(ctx, p.ID); err == nil {
			// an earlier attempt of this same call already wrote the row
			return existing, nil
		}
		if err := slugFree(ctx, s, p.Slug, ""); err != nil {
			return nil, err
		}
		return s.Products.Create(ctx, p)
	})
}

// Update applies patch to the product with id.
func (r *ProductRepository) Update(ctx context.Context, id string, patch model.ProductPatch) envelope.Envelope[*model.Product] {
	if err := validID(id); err != nil {
		return envelope.Fail[*model.Product](err)
	}
	if err := validateStruct(patch); err != nil {
		return envelope.Fail[*model.Product](err)
	}
	now := r.now()
	return run(ctx, r.base, "products.update", func(ctx context.Context, s *store.Set) (*model.Product, error) {
		p, err := s.Products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if patch.Slug != nil && *patch.Slug != p.Slug {
			if err := slugFree(ctx, s, *patch.Slug, p.ID); err != nil {
				return nil, err
			}
		}
		applyProductPatch(p, patch)
		p.UpdatedAt = now
		return s.Products.Update(ctx, p)
	})
}

// SetImage records the object storage key of the product image.
func (r *ProductRepository) SetImage(ctx context.Context, id, key string) envelope.Envelope[*model.Product] {
	return r.Update(ctx, id, model.ProductPatch{ImageKey: &key})
}

// Delete removes a product. Products referenced by orders cannot be deleted;
// deactivate them instead.
func (r *ProductRepository) Delete(ctx context.Context, id string) envelope.Envelope[any] {
	if err := validID(id); err != nil {
		return envelope.Fail[any](err)
	}
	return run(ctx, r.base, "products.delete", func(ctx context.Context, s *store.Set) (any, error) {
		return nil, s.Products.Delete(ctx, id)
	})
}

func slugFree(ctx context.Context, s *store.Set, slug, selfID string) error {
	other, err := s.Products.FindBySlug(ctx, slug)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return apperr.Conflict("slug")
	}
	return nil
}

func applyProductPatch(p *model.Product, patch model.ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = model.RoundMoney(*patch.Price)
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.Tags != nil {
		p.Tags = dedupe(*patch.Tags)
	}
	if patch.ImageKey != nil {
		p.ImageKey = *patch.ImageKey
	}
}

// dedupe drops duplicates and keeps first-seen order.
func dedupe(vals []string) []string {
	out := make([]string, 0, len(vals))
	seen := make(map[string]bool, len(vals))
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
