package metrics

// Comment mutation labels
const (
	OperationCreate = "create"
	OperationEdit   = "edit"
	OperationDelete = "delete"
)

// IncrementCommentMutation counts a committed create, edit or delete.
// A nil receiver is a no-op so services can run without metrics.
func (m *Metrics) IncrementCommentMutation(operation string) {
	if m == nil {
		return
	}
	m.safeExecute("IncrementCommentMutation", func() {
		m.CommentMutationsTotal.WithLabelValues(operation).Inc()
	})
}

// IncrementExport counts an export whose download record was written
func (m *Metrics) IncrementExport(format string) {
	if m == nil {
		return
	}
	m.safeExecute("IncrementExport", func() {
		m.ExportsTotal.WithLabelValues(format).Inc()
	})
}

// AddExportEntries adds the number of entries a finished or aborted stream emitted
func (m *Metrics) AddExportEntries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.safeExecute("AddExportEntries", func() {
		m.ExportEntriesTotal.Add(float64(n))
	})
}

// IncrementExportAborted counts a stream that stopped before its suffix
func (m *Metrics) IncrementExportAborted() {
	if m == nil {
		return
	}
	m.safeExecute("IncrementExportAborted", func() {
		m.ExportsAbortedTotal.Inc()
	})
}

// SetCommentsTotal sets total comments gauge
func (m *Metrics) SetCommentsTotal(count int64) {
	if m == nil {
		return
	}
	m.safeExecute("SetCommentsTotal", func() {
		m.CommentsTotal.Set(float64(count))
	})
}

// SetHistoryEntriesTotal sets total ledger entries gauge
func (m *Metrics) SetHistoryEntriesTotal(count int64) {
	if m == nil {
		return
	}
	m.safeExecute("SetHistoryEntriesTotal", func() {
		m.HistoryEntriesTotal.Set(float64(count))
	})
}

// SetDownloadsTotal sets total download records gauge
func (m *Metrics) SetDownloadsTotal(count int64) {
	if m == nil {
		return
	}
	m.safeExecute("SetDownloadsTotal", func() {
		m.DownloadsTotal.Set(float64(count))
	})
}
