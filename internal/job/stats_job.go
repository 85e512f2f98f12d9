package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"comment-history-api/internal/metrics"
)

// Counter is anything that can report a row count; the comment, history and download repositories all are
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsJob refreshes the business gauges from the store
type StatsJob struct {
	comments  Counter
	history   Counter
	downloads Counter
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    *zap.Logger
}

// NewStatsJob creates a new StatsJob instance
func NewStatsJob(
	comments Counter,
	history Counter,
	downloads Counter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *StatsJob {
	return &StatsJob{
		comments:  comments,
		history:   history,
		downloads: downloads,
		metrics:   m,
		timeout:   5 * time.Second,
		logger:    logger,
	}
}

// Run executes one collection pass. A failed count leaves its gauge at the previous value.
func (j *StatsJob) Run() {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("Panic in stats job", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	failed := 0
	collect := func(name string, c Counter, set func(int64)) {
		n, err := c.Count(ctx)
		if err != nil {
			j.logger.Error("Failed to count rows", zap.String("table", name), zap.Error(err))
			failed++
			return
		}
		set(n)
	}

	collect("comments", j.comments, j.metrics.SetCommentsTotal)
	collect("comment_history", j.history, j.metrics.SetHistoryEntriesTotal)
	collect("download_records", j.downloads, j.metrics.SetDownloadsTotal)

	j.logger.Debug("Stats job completed", zap.Int("failed", failed))
}
