package profiler

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Metrics records evaluation strategy counts, evaluation latency and index
// lookups as prometheus metrics.
type Metrics struct {
	strategies   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	indexLookups *prometheus.CounterVec
	timers       timers
}

// NewMetrics registers the metrics with reg. A nil reg selects the default
// prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		strategies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goxmatch_strategy_total",
				Help: "Number of matches evaluations per chosen strategy",
			},
			[]string{"strategy"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goxmatch_eval_duration_seconds",
				Help:    "Expression evaluation latency",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"expression"},
		),
		indexLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goxmatch_index_lookups_total",
				Help: "Number of predicate evaluations answered by a value index",
			},
			[]string{"index"},
		),
	}
}

// Enabled implements Profiler.
func (m *Metrics) Enabled() bool { return true }

// Start implements Profiler.
func (m *Metrics) Start(expr fmt.Stringer) {
	m.timers.start(expr)
}

// Message implements Profiler. Only optimization messages are counted.
func (m *Metrics) Message(_ fmt.Stringer, cat Category, title string, value any) {
	if cat != Optimizations {
		return
	}
	switch title {
	case TitleIndexEvaluation:
		m.strategies.WithLabelValues("index").Inc()
	case TitleGenericEvaluation:
		m.strategies.WithLabelValues("generic").Inc()
	case TitleEmptySubject:
		m.strategies.WithLabelValues("empty").Inc()
	case TitleUsingIndex:
		name := fmt.Sprint(value)
		if name == "" {
			name = "unknown"
		}
		m.indexLookups.WithLabelValues(name).Inc()
	}
}

// End implements Profiler.
func (m *Metrics) End(expr fmt.Stringer, _ string, _ types.Sequence) {
	if d, ok := m.timers.stop(expr); ok {
		m.duration.WithLabelValues(expr.String()).Observe(d.Seconds())
	}
}
