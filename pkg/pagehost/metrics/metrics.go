// Package metrics exposes navigation and lifecycle measurements to
// Prometheus. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

const namespace = "pagehost"

// Metrics implements router.Observer and lifecycle.Recorder.
type Metrics struct {
	navigations        *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	starts             *prometheus.CounterVec
	startDuration      prometheus.Histogram
	stops              *prometheus.CounterVec
	stopDuration       prometheus.Histogram
	extensionFailures  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "navigation",
				Name:      "requests_total",
				Help:      "Total number of navigation requests by frame, operation and outcome.",
			},
			[]string{"frame", "op", "outcome"},
		),
		navigationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "navigation",
				Name:      "duration_seconds",
				Help:      "Time from dequeue to result of navigation requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"op"},
		),
		starts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lifecycle",
				Name:      "starts_total",
				Help:      "Total number of handled start events by final kind.",
			},
			[]string{"kind"},
		),
		startDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lifecycle",
				Name:      "start_duration_seconds",
				Help:      "Duration of start sequences, gate wait excluded.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
		),
		stops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lifecycle",
				Name:      "stops_total",
				Help:      "Total number of handled stop events by kind.",
			},
			[]string{"kind"},
		),
		stopDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lifecycle",
				Name:      "stop_duration_seconds",
				Help:      "Duration of stop sequences until the deferral completes.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		extensionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lifecycle",
				Name:      "extension_failures_total",
				Help:      "Total number of failed application hooks.",
			},
			[]string{"op"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.navigations,
		m.navigationDuration,
		m.starts,
		m.startDuration,
		m.stops,
		m.stopDuration,
		m.extensionFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveNavigation records one finished navigation request.
func (m *Metrics) ObserveNavigation(frame, op string, kind router.ErrorKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if kind != router.ErrorKindNone {
		outcome = kind.String()
	}
	m.navigations.WithLabelValues(frame, op, outcome).Inc()
	m.navigationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveStart(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.starts.WithLabelValues(kind).Inc()
	m.startDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveStop(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stops.WithLabelValues(kind).Inc()
	m.stopDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveExtensionFailure(op string) {
	if m == nil {
		return
	}
	m.extensionFailures.WithLabelValues(op).Inc()
}

// Handler returns an HTTP handler exposing the metrics in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
