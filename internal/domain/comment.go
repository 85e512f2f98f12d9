package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRoot anchors a thread to a single (kind, target) pair.
// It is created lazily by the first comment on the target and never updated or deleted.
type CommentRoot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      TargetKind `gorm:"type:varchar(32);not null;uniqueIndex:uq_comment_roots_target,priority:1" json:"kind"`
	TargetID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_comment_roots_target,priority:2" json:"targetId"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
}

// TableName specifies the table name for CommentRoot
func (CommentRoot) TableName() string {
	return "comment_roots"
}

func (r *CommentRoot) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// Comment is a single node of a thread
type Comment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RootID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_root_created,priority:1" json:"rootId"`
	AuthorID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_author_id" json:"authorId"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index:idx_comments_parent_id" json:"parentId,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index:idx_comments_root_created,priority:2" json:"createdAt"`
	LastModifiedAt time.Time  `gorm:"not null" json:"lastModifiedAt"`
	Text           string     `gorm:"type:text;not null" json:"text"`

	// no cascade on parent_id: a comment with replies cannot be removed
	Root   *CommentRoot `gorm:"foreignKey:RootID;constraint:OnDelete:RESTRICT" json:"-"`
	Parent *Comment     `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// IsTopLevel reports whether the comment hangs directly off its root object
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
