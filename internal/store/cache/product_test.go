package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/store"
	"storefront/internal/store/memory"
)

const teeID = "11111111-0000-4000-8000-000000000001"

type countingStore struct {
	store.ProductStore
	byID, bySlug int
}

func (c *countingStore) FindByID(ctx context.Context, id string) (*model.Product, error) {
	c.byID++
	return c.ProductStore.FindByID(ctx, id)
}

func (c *countingStore) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	c.bySlug++
	return c.ProductStore.FindBySlug(ctx, slug)
}

func setup(t *testing.T) (*ProductStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &countingStore{ProductStore: memory.NewStores(memory.MustDataset()).Products}
	return NewProductStore(next, rdb, time.Minute), next, mr
}

func TestProductStore_ReadThrough(t *testing.T) {
	c, next, mr := setup(t)
	ctx := context.Background()

	p1, err := c.FindByID(ctx, teeID)
	require.NoError(t, err)
	p2, err := c.FindByID(ctx, teeID)
	require.NoError(t, err)

	assert.Equal(t, p1.Slug, p2.Slug)
	assert.Equal(t, 1, next.byID)
	assert.True(t, mr.Exists(idKey(teeID)))

	// the id lookup also primed the slug entry
	_, err = c.FindBySlug(ctx, p1.Slug)
	require.NoError(t, err)
	assert.Equal(t, 0, next.bySlug)
	assert.Equal(t, time.Minute, mr.TTL(slugKey(p1.Slug)))
}

func TestProductStore_NotFoundIsNotCached(t *testing.T) {
	c, next, mr := setup(t)

	_, err := c.FindBySlug(context.Background(), "nope")

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.False(t, mr.Exists(slugKey("nope")))
	assert.Equal(t, 1, next.bySlug)
}

func TestProductStore_UpdateInvalidates(t *testing.T) {
	c, next, mr := setup(t)
	ctx := context.Background()

	p, err := c.FindByID(ctx, teeID)
	require.NoError(t, err)
	oldSlug := p.Slug

	p.Slug = "classic-tee"
	p.Price = 21
	_, err = c.Update(ctx, p)
	require.NoError(t, err)

	assert.False(t, mr.Exists(idKey(teeID)))
	assert.False(t, mr.Exists(slugKey(oldSlug)))

	got, err := c.FindByID(ctx, teeID)
	require.NoError(t, err)
	assert.Equal(t, 21.0, got.Price)
	assert.Equal(t, 3, next.byID)
}

func TestProductStore_RedisDown(t *testing.T) {
	c, next, mr := setup(t)
	mr.Close()

	p, err := c.FindByID(context.Background(), teeID)

	require.NoError(t, err)
	assert.Equal(t, teeID, p.ID)
	assert.Equal(t, 1, next.byID)
}

func TestWrap(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	base := memory.NewStores(memory.MustDataset())
	wrapped := Wrap(base, rdb, 0)

	assert.IsType(t, &ProductStore{}, wrapped.Products)
	assert.Same(t, base.Orders, wrapped.Orders)
	assert.Equal(t, base.Name, wrapped.Name)
}
