package metrics

import (
	"time"
)

// RecordCacheOperation records a tree cache get/set/invalidate and its result (hit, miss, ok, stale, error)
func (m *Metrics) RecordCacheOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.safeExecute("RecordCacheOperation", func() {
		m.CacheOperationsTotal.WithLabelValues(operation, result).Inc()
		m.CacheOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	})
}
