package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"comment-history-api/internal/cache"
	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/response"
)

// TreeService builds nested thread views
type TreeService interface {
	GetTree(ctx context.Context, target domain.TargetRef) (*dto.TreeResponse, error)
}

type treeServiceImpl struct {
	commentRepo repository.CommentRepository
	targetRepo  repository.TargetRepository
	treeCache   cache.TreeCache
	loc         *time.Location
	logger      *zap.Logger
}

// NewTreeService creates a new instance of TreeService; dates are rendered in loc
func NewTreeService(
	commentRepo repository.CommentRepository,
	targetRepo repository.TargetRepository,
	treeCache cache.TreeCache,
	loc *time.Location,
	logger *zap.Logger,
) TreeService {
	if treeCache == nil {
		treeCache = cache.NewTreeCache(nil, 0, logger, nil)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &treeServiceImpl{
		commentRepo: commentRepo,
		targetRepo:  targetRepo,
		treeCache:   treeCache,
		loc:         loc,
		logger:      logger,
	}
}

// GetTree returns the whole thread of a root object, or the subtree below a comment
func (s *treeServiceImpl) GetTree(ctx context.Context, target domain.TargetRef) (*dto.TreeResponse, error) {
	loc, err := resolveThread(ctx, s.commentRepo, s.targetRepo, target)
	if err != nil {
		return nil, err
	}
	if !loc.hasRoot {
		return &dto.TreeResponse{Root: &dto.RootTree{
			Name:     loc.rootName,
			Kind:     target.Kind.DisplayName(),
			Comments: []*dto.TreeNode{},
		}}, nil
	}

	key := target.String()
	cached, gen, ok := s.treeCache.Get(ctx, loc.rootID, key)
	if ok {
		return cached, nil
	}

	comments, err := s.commentRepo.FindByRoot(ctx, loc.rootID)
	if err != nil {
		return nil, storeError(err, "", "Failed to load thread")
	}
	idx := indexThread(comments, s.loc)

	var tree *dto.TreeResponse
	if loc.parentID == nil {
		tree = &dto.TreeResponse{Root: &dto.RootTree{
			Name:     loc.rootName,
			Kind:     target.Kind.DisplayName(),
			Comments: idx.topLevel(),
		}}
	} else {
		node := idx.subtree(*loc.parentID)
		if node == nil {
			// deleted after it was resolved
			return nil, response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		tree = &dto.TreeResponse{Node: node}
	}

	s.treeCache.Set(ctx, loc.rootID, key, gen, tree)
	return tree, nil
}
