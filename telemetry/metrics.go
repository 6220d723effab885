package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the latest generation as Prometheus gauges.
type Metrics struct {
	registry *prometheus.Registry

	iteration   prometheus.Gauge
	exploration prometheus.Gauge
	gravity     prometheus.Gauge
	friction    prometheus.Gauge
	hidden      prometheus.Gauge
	score       *prometheus.GaugeVec
	increases   prometheus.Counter
}

// NewMetrics creates the gauges on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:    prometheus.NewRegistry(),
		iteration:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "pendulum_iteration", Help: "Iteration within the current exploration."}),
		exploration: prometheus.NewGauge(prometheus.GaugeOpts{Name: "pendulum_exploration", Help: "Current exploration index."}),
		gravity:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "pendulum_gravity", Help: "Solver gravity of the last iteration."}),
		friction:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "pendulum_friction", Help: "Solver friction of the last iteration."}),
		hidden:      prometheus.NewGauge(prometheus.GaugeOpts{Name: "pendulum_best_hidden_nodes", Help: "Hidden nodes of the best genome."}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pendulum_score",
			Help: "Score distribution of the last generation.",
		}, []string{"stat"}),
		increases: prometheus.NewCounter(prometheus.CounterOpts{Name: "pendulum_difficulty_increases_total", Help: "Number of curriculum steps taken."}),
	}
	m.registry.MustRegister(m.iteration, m.exploration, m.gravity, m.friction, m.hidden, m.score, m.increases)
	return m
}

// Record implements Recorder.
func (m *Metrics) Record(g Generation) error {
	if m == nil {
		return nil
	}
	m.iteration.Set(float64(g.Iteration))
	m.exploration.Set(float64(g.Exploration))
	m.gravity.Set(g.Gravity)
	m.friction.Set(g.Friction)
	m.hidden.Set(float64(g.BestHidden))
	m.score.WithLabelValues("best").Set(g.Best)
	m.score.WithLabelValues("mean").Set(g.Mean)
	m.score.WithLabelValues("p50").Set(g.P50)
	m.score.WithLabelValues("p90").Set(g.P90)
	if g.DifficultyIncreased {
		m.increases.Inc()
	}
	return nil
}

// Registry returns the registry holding the gauges.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
