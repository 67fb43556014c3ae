package repository

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const (
	freeShippingFrom = 50.0
	flatShipping     = 9.99
	taxRate          = 0.08
)

// CartRepository manages cart items. The customer-scoped operations return
// the whole cart with a freshly computed summary.
type CartRepository struct {
	base
}

func (r *CartRepository) GetAll(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.CartItem]] {
	return list(ctx, r.base, "cart.list", store.CartSchema, d, func(s *store.Set) listFunc[model.CartItem] {
		return s.Cart.List
	})
}

func (r *CartRepository) GetByID(ctx context.Context, id string) envelope.Envelope[*model.CartItem] {
	return get(ctx, r.base, "cart.get", id, func(s *store.Set) findFunc[model.CartItem] {
		return s.Cart.FindByID
	})
}

// Create adds a single item; the (customer, product) pair must not already
// be in the cart.
func (r *CartRepository) Create(ctx context.Context, in model.CartItemInput) envelope.Envelope[*model.CartItem] {
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.CartItem](err)
	}
	now := r.now()
	id := r.newID()
	return run(ctx, r.base, "cart.create", func(ctx context.Context, s *store.Set) (*model.CartItem, error) {
		if existing, err := s.Cart.FindByID(ctx, id); err == nil {
			return existing, nil
		}
		p, err := purchasable(ctx, s, in.ProductID)
		if err != nil {
			return nil, err
		}
		_, err = s.Cart.FindByCustomerProduct(ctx, in.CustomerID, in.ProductID)
		switch {
		case err == nil:
			return nil, apperr.Conflict("cart item")
		case !apperr.Is(err, apperr.KindNotFound):
			return nil, err
		}
		return s.Cart.Create(ctx, &model.CartItem{
			ID:         id,
			CustomerID: in.CustomerID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			Price:      p.Price,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	})
}

func (r *CartRepository) Update(ctx context.Context, id string, patch model.CartItemPatch) envelope.Envelope[*model.CartItem] {
	if err := validID(id); err != nil {
		return envelope.Fail[*model.CartItem](err)
	}
	if err := validateStruct(patch); err != nil {
		return envelope.Fail[*model.CartItem](err)
	}
	now := r.now()
	return run(ctx, r.base, "cart.update", func(ctx context.Context, s *store.Set) (*model.CartItem, error) {
		it, err := s.Cart.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if patch.Quantity != nil {
			it.Quantity = *patch.Quantity
		}
		it.UpdatedAt = now
		return s.Cart.Update(ctx, it)
	})
}

func (r *CartRepository) Delete(ctx context.Context, id string) envelope.Envelope[any] {
	if err := validID(id); err != nil {
		return envelope.Fail[any](err)
	}
	return run(ctx, r.base, "cart.delete", func(ctx context.Context, s *store.Set) (any, error) {
		return nil, s.Cart.Delete(ctx, id)
	})
}

// View returns the customer's cart.
func (r *CartRepository) View(ctx context.Context, customerID string) envelope.Envelope[model.CartView] {
	if err := validID(customerID); err != nil {
		return envelope.Fail[model.CartView](err)
	}
	return run(ctx, r.base, "cart.view", func(ctx context.Context, s *store.Set) (model.CartView, error) {
		return cartView(ctx, s, customerID)
	})
}

// Add puts quantity units of a product in the cart, merging with an existing
// line. The line price is refreshed to the current product price.
func (r *CartRepository) Add(ctx context.Context, customerID, productID string, quantity int) envelope.Envelope[model.CartView] {
	in := model.CartItemInput{CustomerID: customerID, ProductID: productID, Quantity: quantity}
	if err := validateStruct(in); err != nil {
		return envelope.Fail[model.CartView](err)
	}
	now := r.now()
	id := r.newID()
	// quantity written to each store set by an earlier attempt of this call
	merged := make(map[*store.Set]int)
	return run(ctx, r.base, "cart.add", func(ctx context.Context, s *store.Set) (model.CartView, error) {
		p, err := purchasable(ctx, s, productID)
		if err != nil {
			return model.CartView{}, err
		}
		it, err := s.Cart.FindByCustomerProduct(ctx, customerID, productID)
		if q, ok := merged[s]; ok && err == nil && it.Quantity == q {
			return cartView(ctx, s, customerID)
		}
		switch {
		case err == nil && it.ID == id:
			// written by an earlier attempt of this call
		case err == nil:
			it.Quantity += quantity
			it.Price = p.Price
			it.UpdatedAt = now
			merged[s] = it.Quantity
			if _, err := s.Cart.Update(ctx, it); err != nil {
				return model.CartView{}, err
			}
		case apperr.Is(err, apperr.KindNotFound):
			_, err := s.Cart.Create(ctx, &model.CartItem{
				ID:         id,
				CustomerID: customerID,
				ProductID:  productID,
				Quantity:   quantity,
				Price:      p.Price,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			if err != nil {
				return model.CartView{}, err
			}
		default:
			return model.CartView{}, err
		}
		return cartView(ctx, s, customerID)
	})
}

// SetQuantity replaces the quantity of a line; zero or less removes it.
func (r *CartRepository) SetQuantity(ctx context.Context, customerID, productID string, quantity int) envelope.Envelope[model.CartView] {
	if quantity <= 0 {
		return r.Remove(ctx, customerID, productID)
	}
	if err := validateStruct(model.CartItemInput{CustomerID: customerID, ProductID: productID, Quantity: quantity}); err != nil {
		return envelope.Fail[model.CartView](err)
	}
	now := r.now()
	return run(ctx, r.base, "cart.set_quantity", func(ctx context.Context, s *store.Set) (model.CartView, error) {
		it, err := s.Cart.FindByCustomerProduct(ctx, customerID, productID)
		if err != nil {
			return model.CartView{}, err
		}
		it.Quantity = quantity
		it.UpdatedAt = now
		if _, err := s.Cart.Update(ctx, it); err != nil {
			return model.CartView{}, err
		}
		return cartView(ctx, s, customerID)
	})
}

// Remove drops a product from the cart. Removing a product that is not in
// the cart is not an error.
func (r *CartRepository) Remove(ctx context.Context, customerID, productID string) envelope.Envelope[model.CartView] {
	if err := validID(customerID); err != nil {
		return envelope.Fail[model.CartView](err)
	}
	if err := validID(productID); err != nil {
		return envelope.Fail[model.CartView](err)
	}
	return run(ctx, r.base, "cart.remove", func(ctx context.Context, s *store.Set) (model.CartView, error) {
		it, err := s.Cart.FindByCustomerProduct(ctx, customerID, productID)
		switch {
		case err == nil:
			if err := s.Cart.Delete(ctx, it.ID); err != nil && !apperr.Is(err, apperr.KindNotFound) {
				return model.CartView{}, err
			}
		case !apperr.Is(err, apperr.KindNotFound):
			return model.CartView{}, err
		}
		return cartView(ctx, s, customerID)
	})
}

// Clear empties the cart.
func (r *CartRepository) Clear(ctx context.Context, customerID string) envelope.Envelope[model.CartView] {
	if err := validID(customerID); err != nil {
		return envelope.Fail[model.CartView](err)
	}
	return run(ctx, r.base, "cart.clear", func(ctx context.Context, s *store.Set) (model.CartView, error) {
		if err := s.Cart.DeleteByCustomer(ctx, customerID); err != nil {
			return model.CartView{}, err
		}
		return cartView(ctx, s, customerID)
	})
}

func purchasable(ctx context.Context, s *store.Set, productID string) (*model.Product, error) {
	p, err := s.Products.FindByID(ctx, productID)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return nil, apperr.Validation("product %s does not exist", productID)
	case err != nil:
		return nil, err
	case !p.IsActive:
		return nil, apperr.Validation("product %s is not available", productID)
	}
	return p, nil
}

func cartView(ctx context.Context, s *store.Set, customerID string) (model.CartView, error) {
	items, err := cartItems(ctx, s, customerID)
	if err != nil {
		return model.CartView{}, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return model.CartView{Items: items, Summary: Summarize(items)}, nil
}

// Summarize computes the money breakdown of a cart. Shipping is free for an
// empty cart and from a subtotal of 50.
func Summarize(items []model.CartItem) model.CartSummary {
	var sum model.CartSummary
	var subtotal float64
	for _, it := range items {
		sum.ItemCount += it.Quantity
		subtotal += float64(it.Quantity) * it.Price
	}
	sum.Subtotal = model.RoundMoney(subtotal)
	if sum.Subtotal > 0 && sum.Subtotal < freeShippingFrom {
		sum.Shipping = flatShipping
	}
	sum.Tax = model.RoundMoney(sum.Subtotal * taxRate)
	sum.Total = model.RoundMoney(sum.Subtotal + sum.Shipping + sum.Tax)
	return sum
}
