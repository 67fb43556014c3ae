package repository

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/envelope"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var errAppendOnly = apperr.Validation("analytics metrics are append-only")

// AnalyticsRepository records write-once metrics.
type AnalyticsRepository struct {
	base
}

func (r *AnalyticsRepository) GetAll(ctx context.Context, d query.Descriptor) envelope.Envelope[query.Page[model.AnalyticsMetric]] {
	return list(ctx, r.base, "analytics.list", store.MetricSchema, d, func(s *store.Set) listFunc[model.AnalyticsMetric] {
		return s.Metrics.List
	})
}

func (r *AnalyticsRepository) GetByID(ctx context.Context, id string) envelope.Envelope[*model.AnalyticsMetric] {
	return get(ctx, r.base, "analytics.get", id, func(s *store.Set) findFunc[model.AnalyticsMetric] {
		return s.Metrics.FindByID
	})
}

func (r *AnalyticsRepository) Create(ctx context.Context, in model.AnalyticsMetricInput) envelope.Envelope[*model.AnalyticsMetric] {
	if err := validateStruct(in); err != nil {
		return envelope.Fail[*model.AnalyticsMetric](err)
	}
	m := &model.AnalyticsMetric{
		ID:         r.newID(),
		Name:       in.Name,
		Value:      in.Value,
		Context:    in.Context,
		RecordedAt: r.now(),
	}
	if m.Context == nil {
		m.Context = map[string]any{}
	}
	return run(ctx, r.base, "analytics.create", func(ctx context.Context, s *store.Set) (*model.AnalyticsMetric, error) {
		if existing, err := s.Metrics.FindByID(ctx, m.ID); err == nil {
			return existing, nil
		}
		return s.Metrics.Create(ctx, m)
	})
}

// Record is Create with positional arguments.
func (r *AnalyticsRepository) Record(ctx context.Context, name string, value float64, attrs map[string]any) envelope.Envelope[*model.AnalyticsMetric] {
	return r.Create(ctx, model.AnalyticsMetricInput{Name: name, Value: value, Context: attrs})
}

func (r *AnalyticsRepository) Update(context.Context, string, model.AnalyticsMetricInput) envelope.Envelope[*model.AnalyticsMetric] {
	return envelope.Fail[*model.AnalyticsMetric](errAppendOnly)
}

func (r *AnalyticsRepository) Delete(context.Context, string) envelope.Envelope[any] {
	return envelope.Fail[any](errAppendOnly)
}
