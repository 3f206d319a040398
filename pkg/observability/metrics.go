package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

// Namespace prefixes every metric name.
const Namespace = "prechoster"

// Metrics holds the engine collectors.
type Metrics struct {
	Passes         *prometheus.CounterVec
	PassDuration   prometheus.Histogram
	PassSteps      prometheus.Histogram
	Transforms     *prometheus.CounterVec
	TransformTime  *prometheus.HistogramVec
	InFlightPasses prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "passes_total",
				Help:      "Total number of evaluation passes by outcome",
			},
			[]string{"status"},
		),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of evaluation passes",
			Buckets:   prometheus.DefBuckets,
		}),
		PassSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pass_steps",
			Help:      "Resolve steps taken per evaluation pass",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		Transforms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "transforms_total",
				Help:      "Total number of module transforms by plugin and outcome",
			},
			[]string{"plugin", "status"},
		),
		TransformTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "transform_duration_seconds",
				Help:      "Duration of module transforms",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"plugin"},
		),
		InFlightPasses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "passes_in_flight",
			Help:      "Evaluation passes currently running",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Passes, m.PassDuration, m.PassSteps, m.Transforms, m.TransformTime, m.InFlightPasses)
	}
	return m
}

// Hooks returns engine hooks that record into m.
func (m *Metrics) Hooks() domain.EvalHooks {
	return domain.EvalHooks{
		OnPassStart: func(ctx context.Context, e *domain.PassEvent) {
			m.InFlightPasses.Inc()
		},
		OnPassDone: func(ctx context.Context, e *domain.PassEvent) {
			m.InFlightPasses.Dec()
			m.Passes.WithLabelValues(status(e.Err)).Inc()
			m.PassDuration.Observe(e.Duration.Seconds())
			m.PassSteps.Observe(float64(e.Steps))
		},
		OnModuleDone: func(ctx context.Context, e *domain.ModuleEvent) {
			m.Transforms.WithLabelValues(e.Plugin, status(e.Err)).Inc()
			m.TransformTime.WithLabelValues(e.Plugin).Observe(e.Duration.Seconds())
		},
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
