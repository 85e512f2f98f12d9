package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
	"comment-history-api/internal/repository"
)

// DownloadService is the audit ledger of history exports
type DownloadService interface {
	RecordDownload(ctx context.Context, record *domain.DownloadRecord) error
	ListDownloads(ctx context.Context, authorID uuid.UUID) ([]dto.DownloadRecordView, error)
}

type downloadServiceImpl struct {
	downloadRepo repository.DownloadRepository
	targetRepo   repository.TargetRepository
	clock        Clock
	loc          *time.Location
	logger       *zap.Logger
}

// NewDownloadService creates a new instance of DownloadService; listed dates are rendered in loc
func NewDownloadService(
	downloadRepo repository.DownloadRepository,
	targetRepo repository.TargetRepository,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) DownloadService {
	if loc == nil {
		loc = time.UTC
	}
	return &downloadServiceImpl{
		downloadRepo: downloadRepo,
		targetRepo:   targetRepo,
		clock:        clock,
		loc:          loc,
		logger:       logger,
	}
}

// RecordDownload appends a download record. IssuedAt defaults to now.
func (s *downloadServiceImpl) RecordDownload(ctx context.Context, record *domain.DownloadRecord) error {
	if record.IssuedAt.IsZero() {
		record.IssuedAt = s.clock.now()
	}
	record.RangeStart = record.RangeStart.UTC()
	record.RangeEnd = record.RangeEnd.UTC()

	if err := s.downloadRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record download",
			zap.String("requester_id", record.RequesterID.String()),
			zap.String("target_author_id", record.TargetAuthorID.String()),
			zap.Error(err),
		)
		return storeError(err, "", "Failed to record download")
	}
	return nil
}

// ListDownloads returns the exports issued by authorID, oldest first
func (s *downloadServiceImpl) ListDownloads(ctx context.Context, authorID uuid.UUID) ([]dto.DownloadRecordView, error) {
	if _, err := s.targetRepo.FindUserByID(ctx, authorID); err != nil {
		return nil, storeError(err, "User not found", "Failed to load user")
	}

	records, err := s.downloadRepo.FindByRequester(ctx, authorID)
	if err != nil {
		return nil, storeError(err, "", "Failed to list downloads")
	}

	views := make([]dto.DownloadRecordView, 0, len(records))
	for _, r := range records {
		target := dto.TargetView{ID: r.TargetAuthorID}
		if r.Target != nil {
			target.Username = r.Target.Username
		}
		views = append(views, dto.DownloadRecordView{
			ID:         r.ID,
			Target:     target,
			IssuedAt:   r.IssuedAt.In(s.loc),
			RangeStart: r.RangeStart.In(s.loc),
			RangeEnd:   r.RangeEnd.In(s.loc),
			Format:     r.Format,
		})
	}
	return views, nil
}
