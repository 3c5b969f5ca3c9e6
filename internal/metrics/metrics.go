package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

const namespace = "portal"

type Metrics struct {
	RequestLatency  *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	ActionsTotal    *prometheus.CounterVec
	RefreshLatency  prometheus.Histogram
	RefreshFailures prometheus.Counter
	Snapshots       prometheus.Gauge
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route",
		}, []string{"route", "method", "code"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tournaments",
			Name:      "actions_total",
			Help:      "Participant actions by kind and outcome",
		}, []string{"action", "outcome"}),
		RefreshLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tournaments",
			Name:      "refresh_latency_seconds",
			Help:      "Time spent refreshing tournament snapshots",
			Buckets:   prometheus.DefBuckets,
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tournaments",
			Name:      "refresh_failures_total",
			Help:      "Snapshot refreshes that failed at least partially",
		}),
		Snapshots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tournaments",
			Name:      "snapshots",
			Help:      "Tournaments in the last stored snapshot",
		}),
	}

	reg.MustRegister(
		m.RequestLatency,
		m.RequestsTotal,
		m.ActionsTotal,
		m.RefreshLatency,
		m.RefreshFailures,
		m.Snapshots,
	)
	return m
}

// Action outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeDenied   = "denied"
	OutcomeRejected = "rejected"
)

var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(New),
)
