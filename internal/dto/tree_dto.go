package dto

import (
	"time"

	"github.com/google/uuid"
)

// TreeNode is one comment of a materialized thread. Children is never nil.
type TreeNode struct {
	ID             uuid.UUID   `json:"id"`
	AuthorID       uuid.UUID   `json:"authorId"`
	Text           string      `json:"text"`
	CreatedAt      time.Time   `json:"createdAt"`
	LastModifiedAt time.Time   `json:"lastModifiedAt"`
	Children       []*TreeNode `json:"children"`
}

// RootTree is the tree of a root object
type RootTree struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Comments []*TreeNode `json:"comments"`
}

// TreeResponse carries exactly one of Root or Node depending on the target kind
type TreeResponse struct {
	Root *RootTree `json:"root,omitempty"`
	Node *TreeNode `json:"node,omitempty"`
}
