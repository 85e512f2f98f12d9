package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
)

// TargetRepository reads the externally owned entities comments point at: root objects and users
type TargetRepository interface {
	WithTx(tx *gorm.DB) TargetRepository
	FindRootObjectName(ctx context.Context, kind domain.TargetKind, id uuid.UUID) (string, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateRootObject(ctx context.Context, kind domain.TargetKind, name string) (uuid.UUID, error)
	CreateUser(ctx context.Context, username string) (*domain.User, error)
}

type targetRepositoryImpl struct {
	db *gorm.DB
}

// NewTargetRepository creates a new instance of TargetRepository
func NewTargetRepository(db *gorm.DB) TargetRepository {
	return &targetRepositoryImpl{db: db}
}

func (r *targetRepositoryImpl) WithTx(tx *gorm.DB) TargetRepository {
	return &targetRepositoryImpl{db: tx}
}

// FindRootObjectName returns the display name of a root object, or gorm.ErrRecordNotFound
func (r *targetRepositoryImpl) FindRootObjectName(ctx context.Context, kind domain.TargetKind, id uuid.UUID) (string, error) {
	table, ok := domain.RootObjectTable(kind)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a root object", domain.ErrUnknownTargetKind, kind)
	}

	var row struct{ Name string }
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("name").
		Where("id = ?", id).
		Take(&row).Error; err != nil {
		return "", err
	}
	return row.Name, nil
}

func (r *targetRepositoryImpl) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *targetRepositoryImpl) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateRootObject inserts a root object of the given kind (used by seeding and tests)
func (r *targetRepositoryImpl) CreateRootObject(ctx context.Context, kind domain.TargetKind, name string) (uuid.UUID, error) {
	var model interface{}
	var id *uuid.UUID
	switch kind {
	case domain.TargetKindBlogPost:
		m := &domain.BlogPost{Name: name}
		model, id = m, &m.ID
	case domain.TargetKindUserPage:
		m := &domain.UserPage{Name: name}
		model, id = m, &m.ID
	case domain.TargetKindAnotherObject:
		m := &domain.AnotherObject{Name: name}
		model, id = m, &m.ID
	default:
		return uuid.Nil, fmt.Errorf("%w: %s is not a root object", domain.ErrUnknownTargetKind, kind)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return uuid.Nil, err
	}
	return *id, nil
}

func (r *targetRepositoryImpl) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	user := &domain.User{Username: username}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
