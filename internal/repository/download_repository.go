package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
)

// DownloadRepository stores the export audit records
type DownloadRepository interface {
	Create(ctx context.Context, record *domain.DownloadRecord) error
	FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.DownloadRecord, error)
	Count(ctx context.Context) (int64, error)
}

type downloadRepositoryImpl struct {
	db *gorm.DB
}

// NewDownloadRepository creates a new instance of DownloadRepository
func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &downloadRepositoryImpl{db: db}
}

func (r *downloadRepositoryImpl) Create(ctx context.Context, record *domain.DownloadRecord) error {
	return r.db.WithContext(ctx).Omit("Target").Create(record).Error
}

// FindByRequester lists the exports a user issued, oldest first, with the exported author preloaded
func (r *downloadRepositoryImpl) FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	if err := r.db.WithContext(ctx).
		Preload("Target").
		Where("requester_id = ?", requesterID).
		Order("issued_at ASC").
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *downloadRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.DownloadRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
