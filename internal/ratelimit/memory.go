package ratelimit

import (
	"context"
	"sync"
	"time"

	"storefront/internal/config"
)

type bucket struct {
	start time.Time
	count int
}

// Memory is a process-local fixed-window limiter.
type Memory struct {
	settings

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

var _ Limiter = (*Memory)(nil)

func NewMemory(cfg config.RateLimitConfig, opts ...Option) *Memory {
	return &Memory{settings: newSettings(cfg, opts), buckets: make(map[string]*bucket)}
}

func (m *Memory) CanMakeRequest(_ context.Context, identity string) (Decision, error) {
	start := m.windowStart(m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(start)
	b, ok := m.buckets[identity]
	if !ok || !b.start.Equal(start) {
		b = &bucket{start: start}
		m.buckets[identity] = b
	}
	b.count++
	return m.decide(b.count, start), nil
}

// sweepLocked drops buckets of past windows, at most once per window.
func (m *Memory) sweepLocked(start time.Time) {
	if !start.After(m.lastSweep) {
		return
	}
	for id, b := range m.buckets {
		if b.start.Before(start) {
			delete(m.buckets, id)
		}
	}
	m.lastSweep = start
}
