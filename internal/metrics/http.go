package metrics

import (
	"strings"
	"time"
)

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.safeExecute("RecordHTTPRequest", func() {
		status := categorizeStatus(statusCode)
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// categorizeStatus converts status code to category (2xx, 3xx, 4xx, 5xx)
func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint checks if endpoint should be excluded from metrics:
// probes, the scrape endpoint itself and swagger assets, at the root or under any base path.
func ShouldSkipEndpoint(path string) bool {
	switch {
	case path == "/metrics", path == "/health", path == "/ready":
		return true
	case strings.HasSuffix(path, "/metrics"), strings.HasSuffix(path, "/health"), strings.HasSuffix(path, "/ready"):
		return true
	case strings.Contains(path, "/swagger/"):
		return true
	}
	return false
}
