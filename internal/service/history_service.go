package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
	"comment-history-api/internal/export"
	"comment-history-api/internal/metrics"
	"comment-history-api/internal/repository"
)

// ExportRequest describes one history export
type ExportRequest struct {
	RequesterID    uuid.UUID
	TargetAuthorID uuid.UUID
	From           dto.DateBound
	To             dto.DateBound
	Format         export.Format
	// client address, user agent and the like; stored on the download record
	Meta map[string]interface{}
}

// ExportResult is a ready-to-drain stream plus its response metadata
type ExportResult struct {
	Encoder     *export.Encoder
	ContentType string
	FileName    string
	Record      *domain.DownloadRecord
}

// HistoryService streams a user's history ledger
type HistoryService interface {
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

type historyServiceImpl struct {
	historyRepo repository.HistoryRepository
	targetRepo  repository.TargetRepository
	downloads   DownloadService
	clock       Clock
	loc         *time.Location
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewHistoryService creates a new instance of HistoryService; bounds are interpreted and dates rendered in loc
func NewHistoryService(
	historyRepo repository.HistoryRepository,
	targetRepo repository.TargetRepository,
	downloads DownloadService,
	clock Clock,
	loc *time.Location,
	m *metrics.Metrics,
	logger *zap.Logger,
) HistoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &historyServiceImpl{
		historyRepo: historyRepo,
		targetRepo:  targetRepo,
		downloads:   downloads,
		clock:       clock,
		loc:         loc,
		metrics:     m,
		logger:      logger,
	}
}

// DefaultRangeStart is the recorded window start of an export without a lower bound
func DefaultRangeStart(loc *time.Location) time.Time {
	return time.Date(2016, time.November, 20, 16, 0, 0, 0, loc)
}

// Export validates the request, writes the download record and opens the stream.
// The record stays even if the caller never drains the encoder.
func (s *historyServiceImpl) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if _, err := s.targetRepo.FindUserByID(ctx, req.TargetAuthorID); err != nil {
		return nil, storeError(err, "User not found", "Failed to load user")
	}

	from, err := s.resolveBound(req.From)
	if err != nil {
		return nil, err
	}
	to, err := s.resolveBound(req.To)
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}

	now := s.clock.now()
	record := &domain.DownloadRecord{
		RequesterID:    req.RequesterID,
		TargetAuthorID: req.TargetAuthorID,
		IssuedAt:       now,
		RangeStart:     DefaultRangeStart(s.loc),
		RangeEnd:       now,
		Format:         string(req.Format),
		RequestMeta:    req.Meta,
	}
	if from != nil {
		record.RangeStart = *from
	}
	if to != nil {
		record.RangeEnd = *to
	}
	if err := s.downloads.RecordDownload(ctx, record); err != nil {
		return nil, err
	}
	s.metrics.IncrementExport(string(req.Format))

	cursor, err := s.historyRepo.StreamByAuthor(ctx, req.TargetAuthorID, from, to)
	if err != nil {
		s.logger.Error("Failed to open history cursor",
			zap.String("target_author_id", req.TargetAuthorID.String()),
			zap.Error(err),
		)
		return nil, storeError(err, "", "Failed to read history")
	}

	source := &meteredSource{source: cursor, metrics: s.metrics}
	return &ExportResult{
		Encoder:     export.NewEncoder(req.Format, source, s.loc),
		ContentType: req.Format.ContentType(),
		FileName:    export.FileName(req.TargetAuthorID.String(), req.Format),
		Record:      record,
	}, nil
}

func (s *historyServiceImpl) resolveBound(b dto.DateBound) (*time.Time, error) {
	if !b.IsSet() {
		return nil, nil
	}
	t, err := b.In(s.loc)
	if err != nil {
		return nil, invalidArgument("Invalid date bound", err.Error())
	}
	return &t, nil
}

// meteredSource counts streamed entries and reports streams closed before the end
type meteredSource struct {
	source   export.Source
	metrics  *metrics.Metrics
	entries  int
	finished bool
}

func (m *meteredSource) Next() (*domain.HistoryEntry, error) {
	entry, err := m.source.Next()
	if errors.Is(err, io.EOF) {
		m.finished = true
	}
	if err == nil {
		m.entries++
	}
	return entry, err
}

func (m *meteredSource) Close() error {
	m.metrics.AddExportEntries(m.entries)
	if !m.finished {
		m.metrics.IncrementExportAborted()
	}
	return m.source.Close()
}
