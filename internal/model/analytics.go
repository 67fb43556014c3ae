package model

import "time"

// AnalyticsMetric is a write-once measurement.
type AnalyticsMetric struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Value      float64        `json:"value" yaml:"value"`
	Context    map[string]any `json:"context" yaml:"context"`
	RecordedAt time.Time      `json:"recorded_at" yaml:"recorded_at"`
}

// Clone returns a deep-enough copy; nested context values are shared.
func (m AnalyticsMetric) Clone() AnalyticsMetric {
	if m.Context != nil {
		ctx := make(map[string]any, len(m.Context))
		for k, v := range m.Context {
			ctx[k] = v
		}
		m.Context = ctx
	}
	return m
}

// AnalyticsMetricInput holds the attributes accepted on create.
type AnalyticsMetricInput struct {
	Name    string         `json:"name" validate:"required,max=100"`
	Value   float64        `json:"value"`
	Context map[string]any `json:"context"`
}
