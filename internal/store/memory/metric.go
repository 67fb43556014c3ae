package memory

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

var metricFields = fields[model.AnalyticsMetric]{
	"id":          func(m model.AnalyticsMetric) any { return m.ID },
	"name":        func(m model.AnalyticsMetric) any { return m.Name },
	"value":       func(m model.AnalyticsMetric) any { return m.Value },
	"recorded_at": func(m model.AnalyticsMetric) any { return m.RecordedAt },
}

// MetricStore is the fallback store.MetricStore.
type MetricStore struct {
	ds *Dataset
}

var _ store.MetricStore = (*MetricStore)(nil)

func (s *MetricStore) List(_ context.Context, d query.Descriptor) ([]model.AnalyticsMetric, int, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	page, total := apply(s.ds.metrics, d, metricFields, func(m model.AnalyticsMetric) string { return m.ID })
	out := make([]model.AnalyticsMetric, len(page))
	for i, m := range page {
		out[i] = m.Clone()
	}
	return out, total, nil
}

func (s *MetricStore) FindByID(_ context.Context, id string) (*model.AnalyticsMetric, error) {
	s.ds.mu.RLock()
	defer s.ds.mu.RUnlock()

	for _, m := range s.ds.metrics {
		if m.ID == id {
			c := m.Clone()
			return &c, nil
		}
	}
	return nil, apperr.NotFound("metric")
}

func (s *MetricStore) Create(_ context.Context, m *model.AnalyticsMetric) (*model.AnalyticsMetric, error) {
	s.ds.mu.Lock()
	defer s.ds.mu.Unlock()

	for _, existing := range s.ds.metrics {
		if existing.ID == m.ID {
			return nil, apperr.Conflict("id")
		}
	}
	s.ds.metrics = append(s.ds.metrics, m.Clone())
	out := m.Clone()
	return &out, nil
}
