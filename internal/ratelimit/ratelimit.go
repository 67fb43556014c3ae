// Package ratelimit implements the per-caller fixed-window request gate.
//
// Memory keeps its counters in process and is therefore per instance: N
// replicas admit up to N times the configured limit. Redis shares the
// counters between instances.
package ratelimit

import (
	"context"
	"time"

	"storefront/internal/config"
)

const (
	DefaultRequests = 100
	DefaultWindow   = time.Minute
)

// Decision is the outcome of one CanMakeRequest call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether identity may make another request in the current
// window. Every call counts, allowed or not.
type Limiter interface {
	CanMakeRequest(ctx context.Context, identity string) (Decision, error)
}

// Option configures a limiter.
type Option func(*settings)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

type settings struct {
	limit  int
	window time.Duration
	now    func() time.Time
}

func newSettings(cfg config.RateLimitConfig, opts []Option) settings {
	s := settings{
		limit:  cfg.Requests,
		window: time.Duration(cfg.WindowSec) * time.Second,
		now:    time.Now,
	}
	if s.limit <= 0 {
		s.limit = DefaultRequests
	}
	if s.window <= 0 {
		s.window = DefaultWindow
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// windowStart aligns t to the start of its window.
func (s settings) windowStart(t time.Time) time.Time {
	return t.Truncate(s.window)
}

func (s settings) decide(count int, start time.Time) Decision {
	return Decision{
		Allowed:   count <= s.limit,
		Limit:     s.limit,
		Remaining: max(s.limit-count, 0),
		ResetAt:   start.Add(s.window),
	}
}
