package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comment-history-api/internal/domain"
)

// CommentRepository defines data access for comment roots and comments
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository

	GetOrCreateRoot(ctx context.Context, kind domain.TargetKind, targetID uuid.UUID, now time.Time) (*domain.CommentRoot, error)
	FindRoot(ctx context.Context, kind domain.TargetKind, targetID uuid.UUID) (*domain.CommentRoot, error)

	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindByIDForShare(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string, modifiedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByRoot(ctx context.Context, rootID uuid.UUID) ([]*domain.Comment, error)
	FindChildren(ctx context.Context, rootID uuid.UUID, parentID *uuid.UUID, offset, limit int) ([]*domain.Comment, error)
	CountChildren(ctx context.Context, rootID uuid.UUID, parentID *uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

func (r *commentRepositoryImpl) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: tx}
}

// GetOrCreateRoot returns the thread anchor for (kind, targetID), inserting it on first use.
// Concurrent first comments race on the unique index; the loser's insert is a no-op and both read the winner's row.
func (r *commentRepositoryImpl) GetOrCreateRoot(ctx context.Context, kind domain.TargetKind, targetID uuid.UUID, now time.Time) (*domain.CommentRoot, error) {
	candidate := &domain.CommentRoot{Kind: kind, TargetID: targetID, CreatedAt: now}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "target_id"}},
			DoNothing: true,
		}).
		Create(candidate).Error; err != nil {
		return nil, err
	}
	return r.FindRoot(ctx, kind, targetID)
}

// FindRoot returns gorm.ErrRecordNotFound when the target was never commented
func (r *commentRepositoryImpl) FindRoot(ctx context.Context, kind domain.TargetKind, targetID uuid.UUID) (*domain.CommentRoot, error) {
	var root domain.CommentRoot
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND target_id = ?", kind, targetID).
		Take(&root).Error; err != nil {
		return nil, err
	}
	return &root, nil
}

func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate reads the comment with an exclusive row lock held until the transaction ends
func (r *commentRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// FindByIDForShare reads the comment with a shared row lock, blocking a concurrent delete of it
func (r *commentRepositoryImpl) FindByIDForShare(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "SHARE"}), id)
}

func (r *commentRepositoryImpl) findByID(db *gorm.DB, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := db.Where("id = ?", id).Take(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepositoryImpl) UpdateText(ctx context.Context, id uuid.UUID, text string, modifiedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text":             text,
			"last_modified_at": modifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete hard-deletes a comment; callers check for children first
func (r *commentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByRoot loads a whole thread in creation order
func (r *commentRepositoryImpl) FindByRoot(ctx context.Context, rootID uuid.UUID) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	if err := r.db.WithContext(ctx).
		Where("root_id = ?", rootID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// FindChildren lists direct children in creation order. A nil parentID selects the top level of the root.
// limit <= 0 means no limit.
func (r *commentRepositoryImpl) FindChildren(ctx context.Context, rootID uuid.UUID, parentID *uuid.UUID, offset, limit int) ([]*domain.Comment, error) {
	query := r.childrenQuery(ctx, rootID, parentID).
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var comments []*domain.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepositoryImpl) CountChildren(ctx context.Context, rootID uuid.UUID, parentID *uuid.UUID) (int64, error) {
	var count int64
	if err := r.childrenQuery(ctx, rootID, parentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *commentRepositoryImpl) childrenQuery(ctx context.Context, rootID uuid.UUID, parentID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("root_id = ?", rootID)
	if parentID == nil {
		return query.Where("parent_id IS NULL")
	}
	return query.Where("parent_id = ?", *parentID)
}

func (r *commentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Comment{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
