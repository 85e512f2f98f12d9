package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
	"comment-history-api/internal/middleware"
	"comment-history-api/internal/service"
)

// setupTestRouter returns a gin engine; a non-nil userID is injected as the authenticated caller
func setupTestRouter(userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != nil {
		id := *userID
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserID, id)
			c.Next()
		})
	}
	return router
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	CreateCommentFunc      func(ctx context.Context, authorID uuid.UUID, target domain.TargetRef, text string) (*domain.Comment, error)
	EditCommentFunc        func(ctx context.Context, authorID, commentID uuid.UUID, text string) error
	DeleteCommentFunc      func(ctx context.Context, authorID, commentID uuid.UUID) error
	FirstLevelChildrenFunc func(ctx context.Context, target domain.TargetRef) ([]*domain.Comment, error)
	ListFirstLevelFunc     func(ctx context.Context, target domain.TargetRef, page, pageSize int) (*dto.FirstLevelPage, error)
}

func (m *MockCommentService) CreateComment(ctx context.Context, authorID uuid.UUID, target domain.TargetRef, text string) (*domain.Comment, error) {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, authorID, target, text)
	}
	return &domain.Comment{ID: uuid.New()}, nil
}

func (m *MockCommentService) EditComment(ctx context.Context, authorID, commentID uuid.UUID, text string) error {
	if m.EditCommentFunc != nil {
		return m.EditCommentFunc(ctx, authorID, commentID, text)
	}
	return nil
}

func (m *MockCommentService) DeleteComment(ctx context.Context, authorID, commentID uuid.UUID) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, authorID, commentID)
	}
	return nil
}

func (m *MockCommentService) FirstLevelChildren(ctx context.Context, target domain.TargetRef) ([]*domain.Comment, error) {
	if m.FirstLevelChildrenFunc != nil {
		return m.FirstLevelChildrenFunc(ctx, target)
	}
	return nil, nil
}

func (m *MockCommentService) ListFirstLevel(ctx context.Context, target domain.TargetRef, page, pageSize int) (*dto.FirstLevelPage, error) {
	if m.ListFirstLevelFunc != nil {
		return m.ListFirstLevelFunc(ctx, target, page, pageSize)
	}
	return &dto.FirstLevelPage{Items: []dto.FirstLevelItem{}, Page: page, TotalPages: 1}, nil
}

// MockTreeService is a mock implementation of TreeService
type MockTreeService struct {
	GetTreeFunc func(ctx context.Context, target domain.TargetRef) (*dto.TreeResponse, error)
}

func (m *MockTreeService) GetTree(ctx context.Context, target domain.TargetRef) (*dto.TreeResponse, error) {
	if m.GetTreeFunc != nil {
		return m.GetTreeFunc(ctx, target)
	}
	return &dto.TreeResponse{}, nil
}

// MockHistoryService is a mock implementation of HistoryService
type MockHistoryService struct {
	ExportFunc func(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
}

func (m *MockHistoryService) Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, req)
	}
	return nil, nil
}

// MockDownloadService is a mock implementation of DownloadService
type MockDownloadService struct {
	RecordDownloadFunc func(ctx context.Context, record *domain.DownloadRecord) error
	ListDownloadsFunc  func(ctx context.Context, authorID uuid.UUID) ([]dto.DownloadRecordView, error)
}

func (m *MockDownloadService) RecordDownload(ctx context.Context, record *domain.DownloadRecord) error {
	if m.RecordDownloadFunc != nil {
		return m.RecordDownloadFunc(ctx, record)
	}
	return nil
}

func (m *MockDownloadService) ListDownloads(ctx context.Context, authorID uuid.UUID) ([]dto.DownloadRecordView, error) {
	if m.ListDownloadsFunc != nil {
		return m.ListDownloadsFunc(ctx, authorID)
	}
	return []dto.DownloadRecordView{}, nil
}

// sliceSource feeds fixed entries to an export.Encoder and remembers whether it was closed
type sliceSource struct {
	entries []*domain.HistoryEntry
	closed  bool
}

func (s *sliceSource) Next() (*domain.HistoryEntry, error) {
	if len(s.entries) == 0 {
		return nil, io.EOF
	}
	e := s.entries[0]
	s.entries = s.entries[1:]
	return e, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}
