// file: internal/metrics/metrics.go

package metrics

import (
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides centralized metrics collection for the rate server and CLI.
// All methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Token lifecycle
	authRequestsTotal *prometheus.CounterVec
	authDuration      *prometheus.HistogramVec
	tokenCacheHits    prometheus.Counter

	// Provider rate lookups
	providerRequestsTotal *prometheus.CounterVec
	providerDuration      prometheus.Histogram
	authRetriesTotal      prometheus.Counter

	// Quote results
	quotesTotal   *prometheus.CounterVec
	ratesReturned prometheus.Histogram

	// System
	goroutines  prometheus.Gauge
	memoryBytes prometheus.Gauge

	// HTTP inbound
	httpInboundRequestsTotal *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
}

// NewMetrics creates a new metrics instance with all collectors registered
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,

		authRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_auth_requests_total",
				Help: "Total number of login and refresh calls by result",
			},
			[]string{"op", "result"},
		),
		authDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_auth_duration_seconds",
				Help:    "Duration of login and refresh calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		tokenCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rates_token_cache_hits_total",
				Help: "Total number of token requests served from memory",
			},
		),

		providerRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_provider_requests_total",
				Help: "Total number of rate lookups sent to the provider by status code",
			},
			[]string{"status"},
		),
		providerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rates_provider_duration_seconds",
				Help:    "Duration of rate lookups sent to the provider",
				Buckets: prometheus.DefBuckets,
			},
		),
		authRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rates_auth_retries_total",
				Help: "Total number of rate lookups retried after a 401",
			},
		),

		quotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_quotes_total",
				Help: "Total number of quote requests by outcome",
			},
			[]string{"outcome"},
		),
		ratesReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rates_returned_per_quote",
				Help:    "Number of normalized rates returned per quote",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),

		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "goroutines",
				Help: "Number of goroutines",
			},
		),
		memoryBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_bytes",
				Help: "Allocated heap memory in bytes",
			},
		),

		httpInboundRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_inbound_requests_total",
				Help: "Total number of HTTP inbound requests",
			},
			[]string{"path", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	collectors := []prometheus.Collector{
		m.authRequestsTotal,
		m.authDuration,
		m.tokenCacheHits,
		m.providerRequestsTotal,
		m.providerDuration,
		m.authRetriesTotal,
		m.quotesTotal,
		m.ratesReturned,
		m.goroutines,
		m.memoryBytes,
		m.httpInboundRequestsTotal,
		m.httpRequestDuration,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// GetRegistry returns the Prometheus registry (needed for HTTP handler)
func (m *Metrics) GetRegistry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Token lifecycle metrics
func (m *Metrics) IncAuthRequest(op string, success bool) {
	if m == nil {
		return
	}
	m.authRequestsTotal.WithLabelValues(op, result(success)).Inc()
}

func (m *Metrics) ObserveAuthDuration(op string, seconds float64) {
	if m == nil {
		return
	}
	m.authDuration.WithLabelValues(op).Observe(seconds)
}

func (m *Metrics) IncTokenCacheHits() {
	if m == nil {
		return
	}
	m.tokenCacheHits.Inc()
}

// Provider metrics. status 0 means the request never got a response.
func (m *Metrics) IncProviderRequests(status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.providerRequestsTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveProviderDuration(seconds float64) {
	if m == nil {
		return
	}
	m.providerDuration.Observe(seconds)
}

func (m *Metrics) IncAuthRetries() {
	if m == nil {
		return
	}
	m.authRetriesTotal.Inc()
}

// Quote metrics
func (m *Metrics) IncQuotes(outcome string) {
	if m == nil {
		return
	}
	m.quotesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRatesReturned(count int) {
	if m == nil {
		return
	}
	m.ratesReturned.Observe(float64(count))
}

// System metrics
func (m *Metrics) UpdateSystemMetrics() {
	if m == nil {
		return
	}
	m.goroutines.Set(float64(runtime.NumGoroutine()))

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.memoryBytes.Set(float64(memStats.Alloc))
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
