package backend

import "github.com/prometheus/client_golang/prometheus"

// Metrics records which backend served each call.
type Metrics struct {
	calls *prometheus.CounterVec
	mode  prometheus.Gauge
}

// NewMetrics registers the backend collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_backend_calls_total",
				Help: "Data-access calls by operation, serving backend and outcome.",
			},
			[]string{"op", "backend", "outcome"},
		),
		mode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_backend_mode",
			Help: "1 when the live backend is selected, 0 in fallback mode.",
		}),
	}
	if err := reg.Register(m.calls); err != nil {
		return nil, err
	}
	if err := reg.Register(m.mode); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(op string, mode Mode, outcome string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, mode.String(), outcome).Inc()
}

func (m *Metrics) setMode(mode Mode) {
	if m == nil {
		return
	}
	if mode == ModeLive {
		m.mode.Set(1)
	} else {
		m.mode.Set(0)
	}
}
