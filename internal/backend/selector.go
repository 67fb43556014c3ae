// Package backend decides which store set serves a call. The decision is
// made once at startup (and on an explicit recheck); a failing live call is
// retried once and then served from the fallback set without changing the
// process-wide mode.
package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storefront/internal/backend")

// Mode is the process-wide backend selection.
type Mode int32

const (
	ModeFallback Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "fallback"
}

// Handle is the current selection together with the store set it names.
type Handle struct {
	Kind   Mode
	Stores *store.Set
}

// Selector holds the mode and both store sets.
type Selector struct {
	mode     atomic.Int32
	live     *store.Set
	fallback *store.Set
	timeout  time.Duration
	metrics  *Metrics

	mu        sync.Mutex
	reason    string
	checkedAt time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithMetrics records calls and mode changes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// WithTimeout overrides the per-call live timeout from the config.
func WithTimeout(d time.Duration) Option {
	return func(s *Selector) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New probes cfg once. The selector is LIVE only when the probe passes and a
// live store set is given; otherwise it stays in FALLBACK until Recheck.
func New(cfg config.BackendConfig, live, fallback *store.Set, opts ...Option) *Selector {
	if fallback == nil {
		panic("backend: fallback store set is required")
	}
	s := &Selector{live: live, fallback: fallback, timeout: cfg.Timeout()}
	for _, opt := range opts {
		opt(s)
	}
	s.apply(cfg)
	return s
}

// Mode returns the current selection.
func (s *Selector) Mode() Mode {
	return Mode(s.mode.Load())
}

// Handle returns the current selection and its store set.
func (s *Selector) Handle() Handle {
	if s.Mode() == ModeLive {
		return Handle{Kind: ModeLive, Stores: s.live}
	}
	return Handle{Kind: ModeFallback, Stores: s.fallback}
}

// Status describes why the selector is in its current mode.
type Status struct {
	Mode      string    `json:"mode"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

func (s *Selector) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Mode: s.Mode().String(), Reason: s.reason, CheckedAt: s.checkedAt}
}

// Recheck re-runs the probe. It is the only way back to LIVE.
func (s *Selector) Recheck(cfg config.BackendConfig) Mode {
	return s.apply(cfg)
}

// ForceFallback pins FALLBACK, for example after a failed startup ping.
func (s *Selector) ForceFallback(reason string) {
	s.set(ModeFallback, reason)
}

func (s *Selector) apply(cfg config.BackendConfig) Mode {
	if s.live == nil {
		s.set(ModeFallback, "live store not attached")
		return ModeFallback
	}
	if err := Probe(cfg); err != nil {
		s.set(ModeFallback, err.Error())
		return ModeFallback
	}
	s.set(ModeLive, "")
	return ModeLive
}

func (s *Selector) set(m Mode, reason string) {
	s.mu.Lock()
	prev := s.Mode()
	s.mode.Store(int32(m))
	s.reason = reason
	s.checkedAt = time.Now().UTC()
	s.mu.Unlock()

	s.metrics.setMode(m)
	fields := map[string]any{"mode": m.String(), "previous_mode": prev.String()}
	if reason != "" {
		fields["reason"] = reason
	}
	if m == ModeFallback {
		logging.Warn("backend", "backend_mode_selected", fields)
	} else {
		logging.Info("backend", "backend_mode_selected", fields)
	}
}

// Execute runs fn against exactly one store set. In LIVE mode fn gets the
// live set under the selector's timeout; a backend failure is retried once
// and then fn runs again, from the start, against the fallback set. Other
// failures are returned unchanged.
func Execute[T any](ctx context.Context, s *Selector, op string, fn func(context.Context, *store.Set) (T, error)) (T, error) {
	h := s.Handle()
	ctx, span := tracer.Start(ctx, "backend."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("backend.mode", h.Kind.String())),
	)
	defer span.End()

	v, err := execute(ctx, s, h, op, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
	}
	return v, err
}

func execute[T any](ctx context.Context, s *Selector, h Handle, op string, fn func(context.Context, *store.Set) (T, error)) (T, error) {
	if h.Kind == ModeFallback {
		v, err := fn(ctx, h.Stores)
		s.metrics.observe(op, ModeFallback, outcome(err))
		return v, err
	}

	var (
		zero T
		err  error
	)
	for attempt := 1; attempt <= 2; attempt++ {
		var v T
		v, err = runLive(ctx, s, fn)
		if err == nil {
			s.metrics.observe(op, ModeLive, "ok")
			return v, nil
		}
		if !apperr.Retryable(err) {
			s.metrics.observe(op, ModeLive, outcome(err))
			return zero, err
		}
		if ctx.Err() != nil {
			s.metrics.observe(op, ModeLive, "canceled")
			return zero, apperr.Backend(ctx.Err())
		}
	}

	s.metrics.observe(op, ModeLive, "degraded")
	trace.SpanFromContext(ctx).AddEvent("fallback", trace.WithAttributes(
		attribute.String("error.kind", string(apperr.KindOf(err))),
	))
	logging.Warn("backend", "backend_call_degraded", map[string]any{
		"op":            op,
		"error_message": err.Error(),
	})

	v, ferr := fn(ctx, s.fallback)
	s.metrics.observe(op, ModeFallback, outcome(ferr))
	return v, ferr
}

func runLive[T any](ctx context.Context, s *Selector, fn func(context.Context, *store.Set) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := fn(cctx, s.live)
	if err != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) && !apperr.Is(err, apperr.KindBackend) {
		// the deadline surfaced through a layer that did not classify it
		err = apperr.Backend(err)
	}
	return v, err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperr.KindOf(err))
}
