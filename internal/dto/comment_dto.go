package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateCommentRequest represents the request to create a comment
// @Description targetType is one of blog_post, user_page, another_object, comment (legacy codes 0, 1, 2, c are accepted)
// @Description for targetType=comment, targetId is the parent comment ID
type CreateCommentRequest struct {
	TargetType string `json:"targetType" binding:"required" example:"blog_post"`
	TargetID   string `json:"targetId" binding:"required" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Text       string `json:"text" binding:"required,min=1"`
}

// UpdateCommentRequest represents the request to edit a comment
type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required,min=1"`
}

// CommentCreatedResponse is returned after a comment was created
type CommentCreatedResponse struct {
	CommentID uuid.UUID `json:"commentId"`
}

// FirstLevelItem is one entry of a first-level listing page
type FirstLevelItem struct {
	Position       int       `json:"position"`
	CommentID      uuid.UUID `json:"commentId"`
	AuthorID       uuid.UUID `json:"authorId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// FirstLevelPage is a page of first-level comments.
// Page is the effective page after clamping, so callers can detect an out-of-range request.
type FirstLevelPage struct {
	Items      []FirstLevelItem `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int64            `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}
