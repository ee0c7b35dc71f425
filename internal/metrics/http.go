// file: internal/metrics/http.go

package metrics

// IncHTTPInboundRequestsTotal increments HTTP inbound request counter
func (m *Metrics) IncHTTPInboundRequestsTotal(path, method, status string) {
	if m == nil {
		return
	}
	m.httpInboundRequestsTotal.WithLabelValues(path, method, status).Inc()
}

// ObserveHTTPRequestDuration observes HTTP request duration
func (m *Metrics) ObserveHTTPRequestDuration(path, method string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestDuration.WithLabelValues(path, method).Observe(seconds)
}
