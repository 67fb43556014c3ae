package postgres

import (
	"context"
	"database/sql"

	"storefront/internal/model"
	"storefront/internal/query"
	"storefront/internal/store"
)

const metricColumns = "id, name, value, context, recorded_at"

var metricTable = table{
	name:    "analytics_metrics",
	entity:  "metric",
	columns: metricColumns,
	exprs: map[string]string{
		"id":          "id",
		"name":        "name",
		"value":       "value",
		"recorded_at": "recorded_at",
	},
}

// MetricPostgres is the live store.MetricStore.
type MetricPostgres struct {
	db *sql.DB
}

// NewMetricPostgres creates a new MetricPostgres store.
func NewMetricPostgres(db *sql.DB) *MetricPostgres {
	return &MetricPostgres{db: db}
}

var _ store.MetricStore = (*MetricPostgres)(nil)

func scanMetric(s scanner) (model.AnalyticsMetric, error) {
	var m model.AnalyticsMetric
	err := s.Scan(&m.ID, &m.Name, &m.Value, jsonColumn{Target: &m.Context}, &m.RecordedAt)
	if m.Context == nil {
		m.Context = map[string]any{}
	}
	return m, err
}

func (r *MetricPostgres) List(ctx context.Context, d query.Descriptor) ([]model.AnalyticsMetric, int, error) {
	return list(ctx, r.db, metricTable, d, scanMetric)
}

func (r *MetricPostgres) FindByID(ctx context.Context, id string) (*model.AnalyticsMetric, error) {
	m, err := scanMetric(r.db.QueryRowContext(ctx, "SELECT "+metricColumns+" FROM analytics_metrics WHERE id = $1", id))
	if err != nil {
		return nil, classify("metric", err)
	}
	return &m, nil
}

func (r *MetricPostgres) Create(ctx context.Context, m *model.AnalyticsMetric) (*model.AnalyticsMetric, error) {
	c, err := jsonArg(m.Context)
	if err != nil {
		return nil, err
	}
	out, err := scanMetric(r.db.QueryRowContext(ctx, `
		INSERT INTO analytics_metrics (id, name, value, context, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+metricColumns,
		m.ID, m.Name, m.Value, c, m.RecordedAt,
	))
	if err != nil {
		return nil, classify("metric", err)
	}
	return &out, nil
}
