// Package metrics declares the prometheus collectors used across the client.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var Dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "dispatches_total",
	Help:      "Plain actions applied by the state container",
}, []string{"type"})

var DispatchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "dispatch_errors_total",
	Help:      "Dispatches aborted by a failing reducer",
}, []string{"type"})

var ListenerPanics = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "listener_panics_total",
	Help:      "State listeners that panicked and were recovered",
})

var VisibleRecomputes = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "visible_recomputes_total",
	Help:      "Visible list computations that missed the memo cache",
})

var FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "herbar",
	Name:      "fetch_duration_seconds",
	Help:      "Duration of data fetches including retries",
	Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
}, []string{"op", "status"})

var FetchRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "fetch_retries_total",
	Help:      "Fetch attempts retried after a failure",
}, []string{"op"})

var Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "notifications_total",
	Help:      "Notifications raised, including collapsed duplicates",
}, []string{"class"})

var StartupStage = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "herbar",
	Name:      "startup_stage",
	Help:      "Index of the last startup stage reached",
})

var StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "herbar",
	Name:      "startup_stage_duration_seconds",
	Help:      "Time spent in each startup stage",
	Buckets:   prometheus.DefBuckets,
}, []string{"stage"})

var Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "herbar",
	Name:      "exports_total",
	Help:      "Catalog exports rendered, by format",
}, []string{"format"})

var collectors = []prometheus.Collector{
	Dispatches,
	DispatchErrors,
	ListenerPanics,
	VisibleRecomputes,
	FetchDuration,
	FetchRetries,
	Notifications,
	StartupStage,
	StageDuration,
	Exports,
}

// Register adds every collector to reg. Collectors already registered with
// reg are skipped so Register can be called more than once.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
