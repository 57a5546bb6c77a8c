package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware records request counts and durations per path.
type PrometheusMiddleware struct {
	handler http.Handler
}

// NewPrometheusMiddleware wraps a handler with request metrics.
func NewPrometheusMiddleware(handlerToWrap http.Handler) *PrometheusMiddleware {
	return &PrometheusMiddleware{handlerToWrap}
}

func (m *PrometheusMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/metrics" {
		// Skip collecting metrics from the metrics endpoint itself
		m.handler.ServeHTTP(w, r)
		return
	}

	timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(path))
	HTTPRequestsTotal.WithLabelValues(path).Inc()

	m.handler.ServeHTTP(w, r)

	timer.ObserveDuration()
}
