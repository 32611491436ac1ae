// Package metrics exposes Prometheus instrumentation for the sentiment service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeFetched  = "fetched"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// Metrics holds the collectors used by the service.
type Metrics struct {
	Requests        *prometheus.CounterVec
	ProviderCalls   *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	HeadlinesServed prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers all collectors on a fresh registry under namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stock_news_sentiment"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "News sentiment requests by outcome",
		}, []string{"outcome"}),
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Calls to the news provider by provider and status",
		}, []string{"provider", "status"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Latency of news provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		HeadlinesServed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "headlines_served",
			Help:      "Number of headlines in each response",
			Buckets:   []float64{0, 1, 2, 3},
		}),
		gatherer: reg,
	}
}

// NewNop returns metrics registered on a private registry, for tests.
func NewNop() *Metrics {
	return New("test")
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// IncRequest counts one request with the given outcome. Safe on a nil receiver.
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

// ObserveHeadlines records how many headlines a response carried. Safe on a nil receiver.
func (m *Metrics) ObserveHeadlines(n int) {
	if m == nil {
		return
	}
	m.HeadlinesServed.Observe(float64(n))
}

// ObserveProviderCall records one provider call. Safe on a nil receiver.
func (m *Metrics) ObserveProviderCall(provider, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(provider, status).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(took.Seconds())
}
