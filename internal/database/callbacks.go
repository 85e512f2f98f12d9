package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats interface{})
}

const startTimeKey = "metrics:start_time"

// RegisterMetricsCallbacks times every query, row cursor, insert, update and delete
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	cb := db.Callback()

	if err := cb.Query().Before("gorm:query").Register("metrics:query_before", markStart); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:query_after", record(recorder, "select")); err != nil {
		return err
	}
	// Rows() cursors used by history streaming go through the row chain
	if err := cb.Row().Before("gorm:row").Register("metrics:row_before", markStart); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("metrics:row_after", record(recorder, "select")); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("metrics:create_before", markStart); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:create_after", record(recorder, "insert")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:update_before", markStart); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:update_after", record(recorder, "update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:delete_before", markStart); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("metrics:delete_after", record(recorder, "delete"))
}

func markStart(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func record(recorder MetricsRecorder, operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		startTime, ok := db.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		recorder.RecordDBQuery(operation, table, time.Since(startTime.(time.Time)), db.Error)
	}
}

// StartDBStatsCollector publishes connection pool stats every interval until ctx is done
func StartDBStatsCollector(ctx context.Context, db *gorm.DB, recorder MetricsRecorder, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-ctx.Done():
				return
			}
		}
	}()
}
