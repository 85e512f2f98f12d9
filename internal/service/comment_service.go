package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"comment-history-api/internal/cache"
	"comment-history-api/internal/config"
	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
	"comment-history-api/internal/metrics"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/response"
)

// CommentService defines thread mutations and first-level listing.
// It is the only writer of comments and of the history ledger.
type CommentService interface {
	CreateComment(ctx context.Context, authorID uuid.UUID, target domain.TargetRef, text string) (*domain.Comment, error)
	EditComment(ctx context.Context, authorID, commentID uuid.UUID, text string) error
	DeleteComment(ctx context.Context, authorID, commentID uuid.UUID) error
	FirstLevelChildren(ctx context.Context, target domain.TargetRef) ([]*domain.Comment, error)
	ListFirstLevel(ctx context.Context, target domain.TargetRef, page, pageSize int) (*dto.FirstLevelPage, error)
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	db          *gorm.DB
	commentRepo repository.CommentRepository
	historyRepo repository.HistoryRepository
	targetRepo  repository.TargetRepository
	treeCache   cache.TreeCache
	pagination  config.PaginationConfig
	clock       Clock
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(
	db *gorm.DB,
	commentRepo repository.CommentRepository,
	historyRepo repository.HistoryRepository,
	targetRepo repository.TargetRepository,
	treeCache cache.TreeCache,
	pagination config.PaginationConfig,
	clock Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) CommentService {
	if treeCache == nil {
		treeCache = cache.NewTreeCache(nil, 0, logger, nil)
	}
	return &commentServiceImpl{
		db:          db,
		commentRepo: commentRepo,
		historyRepo: historyRepo,
		targetRepo:  targetRepo,
		treeCache:   treeCache,
		pagination:  pagination,
		clock:       clock,
		metrics:     m,
		logger:      logger,
	}
}

// CreateComment attaches a new comment to a root object or replies to a comment
func (s *commentServiceImpl) CreateComment(ctx context.Context, authorID uuid.UUID, target domain.TargetRef, text string) (*domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidArgument("Comment text is required", "")
	}

	now := s.clock.now()
	var created *domain.Comment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.commentRepo.WithTx(tx)

		rootID, parentID, err := s.resolveForWrite(ctx, comments, s.targetRepo.WithTx(tx), target, now)
		if err != nil {
			return err
		}

		comment := &domain.Comment{
			RootID:         rootID,
			AuthorID:       authorID,
			ParentID:       parentID,
			CreatedAt:      now,
			LastModifiedAt: now,
			Text:           text,
		}
		if err := comments.Create(ctx, comment); err != nil {
			return err
		}
		if err := s.historyRepo.WithTx(tx).Append(ctx, domain.NewCreationEntry(comment)); err != nil {
			return err
		}
		created = comment
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "Target not found", "Failed to create comment", zap.String("target", target.String()))
	}

	s.afterCommit(ctx, created.RootID, metrics.OperationCreate)
	s.logger.Debug("Comment created",
		zap.String("comment_id", created.ID.String()),
		zap.String("target", target.String()),
	)
	return created, nil
}

// resolveForWrite returns the thread root and parent for a new comment, creating the root on first use.
// A reply takes a shared lock on its parent so a concurrent delete cannot pass its child check.
func (s *commentServiceImpl) resolveForWrite(ctx context.Context, comments repository.CommentRepository, targets repository.TargetRepository, target domain.TargetRef, now time.Time) (uuid.UUID, *uuid.UUID, error) {
	switch {
	case target.Kind.IsRootObject():
		if _, err := targets.FindRootObjectName(ctx, target.Kind, target.ID); err != nil {
			return uuid.Nil, nil, storeError(err, target.Kind.DisplayName()+" not found", "Failed to load target")
		}
		root, err := comments.GetOrCreateRoot(ctx, target.Kind, target.ID, now)
		if err != nil {
			return uuid.Nil, nil, err
		}
		return root.ID, nil, nil

	case target.Kind == domain.TargetKindComment:
		parent, err := comments.FindByIDForShare(ctx, target.ID)
		if err != nil {
			return uuid.Nil, nil, storeError(err, "Parent comment not found", "Failed to load parent comment")
		}
		parentID := parent.ID
		return parent.RootID, &parentID, nil
	}
	return uuid.Nil, nil, invalidArgument("Unsupported target kind", string(target.Kind))
}

// EditComment replaces the text of a comment. An unchanged text is a no-op and writes no history.
func (s *commentServiceImpl) EditComment(ctx context.Context, authorID, commentID uuid.UUID, text string) error {
	if strings.TrimSpace(text) == "" {
		return invalidArgument("Comment text is required", "")
	}

	var rootID uuid.UUID
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.commentRepo.WithTx(tx)

		current, err := comments.FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		rootID = current.RootID
		if current.Text == text {
			return nil
		}

		// read under the row lock so edits of one comment get increasing timestamps
		now := s.clock.now()
		oldText := current.Text
		if err := comments.UpdateText(ctx, commentID, text, now); err != nil {
			return err
		}
		// the ledger timestamp is the stored modification time, not the local clock value
		updated, err := comments.FindByID(ctx, commentID)
		if err != nil {
			return err
		}
		if err := s.historyRepo.WithTx(tx).Append(ctx, domain.NewEditionEntry(updated, authorID, oldText)); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return s.fail(err, "Comment not found", "Failed to edit comment", zap.String("comment_id", commentID.String()))
	}

	if changed {
		s.afterCommit(ctx, rootID, metrics.OperationEdit)
	}
	return nil
}

// DeleteComment removes a leaf comment and records its last text
func (s *commentServiceImpl) DeleteComment(ctx context.Context, authorID, commentID uuid.UUID) error {
	var rootID uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.commentRepo.WithTx(tx)

		current, err := comments.FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		rootID = current.RootID
		now := s.clock.now()

		children, err := comments.CountChildren(ctx, current.RootID, &current.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			return response.NewAppError(response.ErrCodePreconditionFailed, "Comment has replies and cannot be deleted", "")
		}

		if err := comments.Delete(ctx, commentID); err != nil {
			return err
		}
		return s.historyRepo.WithTx(tx).Append(ctx, domain.NewDeletionEntry(current, authorID, now))
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		// a reply committed between the child check and the delete
		err = response.NewAppError(response.ErrCodePreconditionFailed, "Comment has replies and cannot be deleted", "")
	}
	if err != nil {
		return s.fail(err, "Comment not found", "Failed to delete comment", zap.String("comment_id", commentID.String()))
	}

	s.afterCommit(ctx, rootID, metrics.OperationDelete)
	return nil
}

// FirstLevelChildren returns the direct children of the target in creation order
func (s *commentServiceImpl) FirstLevelChildren(ctx context.Context, target domain.TargetRef) ([]*domain.Comment, error) {
	loc, err := resolveThread(ctx, s.commentRepo, s.targetRepo, target)
	if err != nil {
		return nil, err
	}
	if !loc.hasRoot {
		return []*domain.Comment{}, nil
	}

	children, err := s.commentRepo.FindChildren(ctx, loc.rootID, loc.parentID, 0, 0)
	if err != nil {
		return nil, storeError(err, "", "Failed to list comments")
	}
	return children, nil
}

// ListFirstLevel returns one page of direct children. A page past the end clamps to the last page.
func (s *commentServiceImpl) ListFirstLevel(ctx context.Context, target domain.TargetRef, page, pageSize int) (*dto.FirstLevelPage, error) {
	if page < 1 {
		return nil, invalidArgument("Page must be a positive integer", "")
	}
	pageSize = s.effectivePageSize(pageSize)

	result := &dto.FirstLevelPage{
		Items:      []dto.FirstLevelItem{},
		Page:       1,
		PageSize:   pageSize,
		TotalPages: 1,
	}

	loc, err := resolveThread(ctx, s.commentRepo, s.targetRepo, target)
	if err != nil {
		return nil, err
	}
	if !loc.hasRoot {
		return result, nil
	}

	total, err := s.commentRepo.CountChildren(ctx, loc.rootID, loc.parentID)
	if err != nil {
		return nil, storeError(err, "", "Failed to count comments")
	}
	if total == 0 {
		return result, nil
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * pageSize

	children, err := s.commentRepo.FindChildren(ctx, loc.rootID, loc.parentID, offset, pageSize)
	if err != nil {
		return nil, storeError(err, "", "Failed to list comments")
	}

	for i, c := range children {
		result.Items = append(result.Items, dto.FirstLevelItem{
			Position:       offset + i + 1,
			CommentID:      c.ID,
			AuthorID:       c.AuthorID,
			Text:           c.Text,
			CreatedAt:      c.CreatedAt,
			LastModifiedAt: c.LastModifiedAt,
		})
	}
	result.Page = page
	result.TotalItems = total
	result.TotalPages = totalPages
	return result, nil
}

func (s *commentServiceImpl) effectivePageSize(requested int) int {
	size := requested
	if size <= 0 {
		size = s.pagination.PageSize
	}
	if size <= 0 {
		size = config.Default().Pagination.PageSize
	}
	if s.pagination.MaxPageSize > 0 && size > s.pagination.MaxPageSize {
		size = s.pagination.MaxPageSize
	}
	return size
}

// afterCommit runs the best-effort side effects of a committed mutation
func (s *commentServiceImpl) afterCommit(ctx context.Context, rootID uuid.UUID, operation string) {
	s.treeCache.Invalidate(context.WithoutCancel(ctx), rootID)
	s.metrics.IncrementCommentMutation(operation)
}

func (s *commentServiceImpl) fail(err error, notFoundMsg, failMsg string, fields ...zap.Field) error {
	classified := storeError(err, notFoundMsg, failMsg)
	var appErr *response.AppError
	if errors.As(classified, &appErr) && appErr.Code == response.ErrCodeStorageUnavailable {
		s.logger.Error(failMsg, append(fields, zap.Error(err))...)
	}
	return classified
}
