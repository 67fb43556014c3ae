package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"storefront/internal/config"
)

const keyPrefix = "storefront:ratelimit:"

// Redis is a fixed-window limiter on a shared Redis counter: one INCR per
// request on a key named after the window, expiring with it.
type Redis struct {
	settings
	client *redis.Client
}

var _ Limiter = (*Redis)(nil)

func NewRedis(client *redis.Client, cfg config.RateLimitConfig, opts ...Option) *Redis {
	return &Redis{settings: newSettings(cfg, opts), client: client}
}

func (r *Redis) CanMakeRequest(ctx context.Context, identity string) (Decision, error) {
	start := r.windowStart(r.now())
	key := keyPrefix + identity + ":" + strconv.FormatInt(start.Unix(), 10)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}
	return r.decide(int(incr.Val()), start), nil
}
