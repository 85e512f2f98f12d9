package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
)

// modelInfo holds a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

func models() []modelInfo {
	return []modelInfo{
		{&domain.User{}, domain.User{}.TableName()},
		{&domain.BlogPost{}, domain.BlogPost{}.TableName()},
		{&domain.UserPage{}, domain.UserPage{}.TableName()},
		{&domain.AnotherObject{}, domain.AnotherObject{}.TableName()},
		{&domain.CommentRoot{}, domain.CommentRoot{}.TableName()},
		{&domain.Comment{}, domain.Comment{}.TableName()},
		{&domain.HistoryEntry{}, domain.HistoryEntry{}.TableName()},
		{&domain.DownloadRecord{}, domain.DownloadRecord{}.TableName()},
	}
}

// AutoMigrate creates or updates every table in one call
func AutoMigrate(db *gorm.DB) error {
	all := models()
	list := make([]interface{}, 0, len(all))
	for _, m := range all {
		list = append(list, m.model)
	}

	if err := db.AutoMigrate(list...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// SafeAutoMigrate migrates table by table, logging whether each table already existed
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	all := models()

	logger.Info("Starting safe auto-migration", zap.Int("total_models", len(all)))

	for _, m := range all {
		tableExists := migrator.HasTable(m.model)

		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", m.tableName),
				zap.Bool("table_existed", tableExists),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}

		logger.Info("Migrated table",
			zap.String("table", m.tableName),
			zap.Bool("was_existing", tableExists),
		)
	}

	logger.Info("Safe auto-migration completed", zap.Int("tables_migrated", len(all)))
	return nil
}

// SafeAutoMigrateWithRetry retries SafeAutoMigrate with linear backoff
func SafeAutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = SafeAutoMigrate(db, logger); err == nil {
			return nil
		}
		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
