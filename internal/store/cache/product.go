package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/logging"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const keyPrefix = "storefront:product:"

func idKey(id string) string     { return keyPrefix + "id:" + id }
func slugKey(slug string) string { return keyPrefix + "slug:" + slug }

// ProductStore caches single-product lookups in Redis. Lists are never
// cached. Any Redis failure degrades to a direct store read; the cache can
// make a call slower but never make it fail.
type ProductStore struct {
	next  store.ProductStore
	redis *redis.Client
	ttl   time.Duration
}

var _ store.ProductStore = (*ProductStore)(nil)

// NewProductStore wraps next. A non-positive ttl defaults to five minutes.
func NewProductStore(next store.ProductStore, rdb *redis.Client, ttl time.Duration) *ProductStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductStore{next: next, redis: rdb, ttl: ttl}
}

func (c *ProductStore) List(ctx context.Context, d query.Descriptor) ([]model.Product, int, error) {
	return c.next.List(ctx, d)
}

func (c *ProductStore) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return c.readThrough(ctx, idKey(id), func() (*model.Product, error) {
		return c.next.FindByID(ctx, id)
	})
}

func (c *ProductStore) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return c.readThrough(ctx, slugKey(slug), func() (*model.Product, error) {
		return c.next.FindBySlug(ctx, slug)
	})
}

func (c *ProductStore) readThrough(ctx context.Context, key string, load func() (*model.Product, error)) (*model.Product, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p model.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		logging.Warn("cache", "cache_decode_failed", map[string]any{"key": key})
	case errors.Is(err, redis.Nil):
	default:
		logging.Warn("cache", "cache_read_failed", map[string]any{"key": key, "error_message": err.Error()})
	}

	p, err := load()
	if err != nil {
		return nil, err
	}
	c.put(ctx, p)
	return p, nil
}

func (c *ProductStore) put(ctx context.Context, p *model.Product) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	pipe := c.redis.TxPipeline()
	pipe.Set(ctx, idKey(p.ID), b, c.ttl)
	pipe.Set(ctx, slugKey(p.Slug), b, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Warn("cache", "cache_write_failed", map[string]any{"product_id": p.ID, "error_message": err.Error()})
	}
}

func (c *ProductStore) invalidate(ctx context.Context, keys ...string) {
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		logging.Warn("cache", "cache_invalidate_failed", map[string]any{"keys": keys, "error_message": err.Error()})
	}
}

func (c *ProductStore) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	out, err := c.next.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, idKey(out.ID), slugKey(out.Slug))
	return out, nil
}

// Update drops the entries for the old and the new slug.
func (c *ProductStore) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	keys := []string{idKey(p.ID), slugKey(p.Slug)}
	if old, err := c.next.FindByID(ctx, p.ID); err == nil {
		keys = append(keys, slugKey(old.Slug))
	}
	out, err := c.next.Update(ctx, p)
	c.invalidate(ctx, keys...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProductStore) Delete(ctx context.Context, id string) error {
	keys := []string{idKey(id)}
	if old, err := c.next.FindByID(ctx, id); err == nil {
		keys = append(keys, slugKey(old.Slug))
	}
	err := c.next.Delete(ctx, id)
	c.invalidate(ctx, keys...)
	return err
}

// Wrap returns a copy of set whose product store is cached.
func Wrap(set *store.Set, rdb *redis.Client, ttl time.Duration) *store.Set {
	out := *set
	out.Products = NewProductStore(set.Products, rdb, ttl)
	return &out
}
