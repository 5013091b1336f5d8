// Package metrics exposes run, anchor and signal counters for Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"Springboard/internal/model"
)

const namespace = "springboard"

var (
	Runs = newCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Engine runs by trigger and result.",
	}, []string{"trigger", "result"})

	ValidationErrors = newCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_errors_total",
		Help:      "Rejected inputs by error kind.",
	}, []string{"kind"})

	Signals = newCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signals_total",
		Help:      "Non-idle rows produced, by signal state.",
	}, []string{"state"})

	Anchors = newGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "anchors",
		Help:      "Anchors used by the latest run.",
	})

	OvernightGate = newGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overnight_gate",
		Help:      "1 when the latest run saw overnight trade below every line.",
	})

	RunDuration = newHist(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of collect plus evaluate.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

func newCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	prometheus.MustRegister(c)
	return c
}

func newGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	prometheus.MustRegister(g)
	return g
}

func newHist(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	prometheus.MustRegister(h)
	return h
}

// ObserveEvaluation records a successful run.
func ObserveEvaluation(trigger string, ev *model.Evaluation, took time.Duration) {
	Runs.WithLabelValues(trigger, "ok").Inc()
	RunDuration.Observe(took.Seconds())
	Anchors.Set(float64(len(ev.Anchors)))
	if ev.OvernightGate {
		OvernightGate.Set(1)
	} else {
		OvernightGate.Set(0)
	}
	for state, n := range ev.CountStates() {
		if state == model.StateIdle {
			continue
		}
		Signals.WithLabelValues(string(state)).Add(float64(n))
	}
}

// ObserveFailure records a failed run and, for rejected input, its kind.
func ObserveFailure(trigger string, err error) {
	Runs.WithLabelValues(trigger, "error").Inc()
	if kind := ErrorKind(err); kind != "" {
		ValidationErrors.WithLabelValues(kind).Inc()
	}
}

// ErrorKind names the validation error wrapped in err, or "" for other errors.
func ErrorKind(err error) string {
	var (
		schemaErr  *model.SchemaError
		orderErr   *model.TimeOrderError
		cadenceErr *model.CadenceError
	)
	switch {
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &orderErr):
		if orderErr.Duplicate {
			return "duplicate"
		}
		return "order"
	case errors.As(err, &cadenceErr):
		return "cadence"
	default:
		return ""
	}
}
