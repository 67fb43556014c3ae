// Package repository exposes one repository per entity. Every operation
// returns an envelope.Envelope and never lets an error or panic escape.
// Input is validated before any backend call; the work itself runs through
// backend.Execute so a whole operation is served by exactly one store set.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperr"
	"storefront/internal/backend"
	"storefront/internal/envelope"
	"storefront/internal/query"
	"storefront/internal/store"
)

// Option configures the repositories.
type Option func(*base)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithIDGenerator replaces the id source.
func WithIDGenerator(next func() string) Option {
	return func(b *base) { b.newID = next }
}

type base struct {
	sel   *backend.Selector
	now   func() time.Time
	newID func() string
}

func newBase(sel *backend.Selector, opts ...Option) base {
	b := base{
		sel: sel,
		now: func() time.Time {
			// microseconds: the live timestamp precision
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Repositories bundles every entity repository over one selector.
type Repositories struct {
	Products  *ProductRepository
	Orders    *OrderRepository
	Customers *CustomerRepository
	Admins    *AdminUserRepository
	Cart      *CartRepository
	Analytics *AnalyticsRepository
}

// New builds all repositories.
func New(sel *backend.Selector, opts ...Option) *Repositories {
	b := newBase(sel, opts...)
	return &Repositories{
		Products:  &ProductRepository{base: b},
		Orders:    &OrderRepository{base: b},
		Customers: &CustomerRepository{base: b},
		Admins:    &AdminUserRepository{base: b},
		Cart:      &CartRepository{base: b},
		Analytics: &AnalyticsRepository{base: b},
	}
}

// run executes fn through the selector and wraps the outcome.
func run[T any](ctx context.Context, b base, op string, fn func(context.Context, *store.Set) (T, error)) envelope.Envelope[T] {
	return envelope.Guard(func() envelope.Envelope[T] {
		return envelope.From(backend.Execute(ctx, b.sel, op, fn))
	})
}

type listFunc[T any] func(context.Context, query.Descriptor) ([]T, int, error)

func list[T any](ctx context.Context, b base, op string, schema query.Schema, d query.Descriptor, pick func(*store.Set) listFunc[T]) envelope.Envelope[query.Page[T]] {
	if err := d.Validate(schema); err != nil {
		return envelope.Fail[query.Page[T]](err)
	}
	d = d.Resolve(schema)
	return run(ctx, b, op, func(ctx context.Context, s *store.Set) (query.Page[T], error) {
		items, total, err := pick(s)(ctx, d)
		if err != nil {
			return query.Page[T]{}, err
		}
		return query.NewPage(items, total, d), nil
	})
}

type findFunc[T any] func(context.Context, string) (*T, error)

// get treats a missing row as a successful nil read.
func get[T any](ctx context.Context, b base, op, id string, pick func(*store.Set) findFunc[T]) envelope.Envelope[*T] {
	if err := validID(id); err != nil {
		return envelope.Fail[*T](err)
	}
	return run(ctx, b, op, func(ctx context.Context, s *store.Set) (*T, error) {
		return orNil(pick(s)(ctx, id))
	})
}

func orNil[T any](v *T, err error) (*T, error) {
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	return v, err
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("invalid id %q", id)
	}
	return nil
}

// maxCollectPages bounds collect against a source whose total keeps growing.
const maxCollectPages = 1000

// collect pages through fetch from page 1 until every matching row has been
// read. All pages come from the store fetch belongs to.
func collect[T any](ctx context.Context, d query.Descriptor, fetch listFunc[T]) ([]T, error) {
	out := make([]T, 0)
	for page := 1; page <= maxCollectPages; page++ {
		items, total, err := fetch(ctx, d.WithPageNumber(page))
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) == 0 || len(out) >= total {
			break
		}
	}
	return out, nil
}

// listAll reads every row matching d in one backend call, so a degraded call
// restarts from page 1 on the fallback set instead of mixing the two.
func listAll[T any](ctx context.Context, b base, op string, schema query.Schema, d query.Descriptor, pick func(*store.Set) listFunc[T]) envelope.Envelope[[]T] {
	if err := d.Validate(schema); err != nil {
		return envelope.Fail[[]T](err)
	}
	d = d.Resolve(schema)
	return run(ctx, b, op, func(ctx context.Context, s *store.Set) ([]T, error) {
		return collect(ctx, d, pick(s))
	})
}
