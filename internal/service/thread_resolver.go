package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/response"
)

// threadLocation is where a target sits inside the thread store
type threadLocation struct {
	rootID uuid.UUID
	// nil for a root object, the addressed comment otherwise
	parentID *uuid.UUID
	// display name, root objects only
	rootName string
	// false when a root object exists but was never commented
	hasRoot bool
}

// resolveThread maps a target reference to its thread without creating anything
func resolveThread(ctx context.Context, comments repository.CommentRepository, targets repository.TargetRepository, target domain.TargetRef) (*threadLocation, error) {
	switch {
	case target.Kind.IsRootObject():
		name, err := targets.FindRootObjectName(ctx, target.Kind, target.ID)
		if err != nil {
			return nil, storeError(err, target.Kind.DisplayName()+" not found", "Failed to load target")
		}
		loc := &threadLocation{rootName: name}
		root, err := comments.FindRoot(ctx, target.Kind, target.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loc, nil
		}
		if err != nil {
			return nil, storeError(err, "", "Failed to load comment root")
		}
		loc.rootID = root.ID
		loc.hasRoot = true
		return loc, nil

	case target.Kind == domain.TargetKindComment:
		comment, err := comments.FindByID(ctx, target.ID)
		if err != nil {
			return nil, storeError(err, "Comment not found", "Failed to load comment")
		}
		id := comment.ID
		return &threadLocation{rootID: comment.RootID, parentID: &id, hasRoot: true}, nil
	}
	return nil, response.NewAppError(response.ErrCodeValidation, "Unsupported target kind", string(target.Kind))
}
