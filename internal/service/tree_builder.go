package service

import (
	"time"

	"github.com/google/uuid"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/dto"
)

// threadIndex is the parent -> children adjacency of one thread.
// Top-level comments are filed under uuid.Nil.
type threadIndex struct {
	byID     map[uuid.UUID]*domain.Comment
	children map[uuid.UUID][]*domain.Comment
	loc      *time.Location
}

// indexThread builds the adjacency in one pass. comments must be in creation order;
// each child list inherits that order.
func indexThread(comments []*domain.Comment, loc *time.Location) *threadIndex {
	idx := &threadIndex{
		byID:     make(map[uuid.UUID]*domain.Comment, len(comments)),
		children: make(map[uuid.UUID][]*domain.Comment),
		loc:      loc,
	}
	for _, c := range comments {
		idx.byID[c.ID] = c
		parent := uuid.Nil
		if !c.IsTopLevel() {
			parent = *c.ParentID
		}
		idx.children[parent] = append(idx.children[parent], c)
	}
	return idx
}

type treeFrame struct {
	node *dto.TreeNode
	id   uuid.UUID
}

// topLevel materializes every top-level comment with its subtree
func (idx *threadIndex) topLevel() []*dto.TreeNode {
	nodes := make([]*dto.TreeNode, 0, len(idx.children[uuid.Nil]))
	var stack []treeFrame
	for _, c := range idx.children[uuid.Nil] {
		n := idx.node(c)
		nodes = append(nodes, n)
		stack = append(stack, treeFrame{node: n, id: c.ID})
	}
	idx.expand(stack)
	return nodes
}

// subtree materializes one comment and everything below it; nil if the comment is not in the thread
func (idx *threadIndex) subtree(id uuid.UUID) *dto.TreeNode {
	c, ok := idx.byID[id]
	if !ok {
		return nil
	}
	n := idx.node(c)
	idx.expand([]treeFrame{{node: n, id: c.ID}})
	return n
}

// expand fills Children with an explicit stack so depth is not bounded by the goroutine stack
func (idx *threadIndex) expand(stack []treeFrame) {
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, c := range idx.children[f.id] {
			n := idx.node(c)
			f.node.Children = append(f.node.Children, n)
			stack = append(stack, treeFrame{node: n, id: c.ID})
		}
	}
}

func (idx *threadIndex) node(c *domain.Comment) *dto.TreeNode {
	return &dto.TreeNode{
		ID:             c.ID,
		AuthorID:       c.AuthorID,
		Text:           c.Text,
		CreatedAt:      c.CreatedAt.In(idx.loc),
		LastModifiedAt: c.LastModifiedAt.In(idx.loc),
		Children:       make([]*dto.TreeNode, 0, len(idx.children[c.ID])),
	}
}
