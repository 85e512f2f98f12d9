package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChangeType classifies a history entry by which texts it carries
type ChangeType string

const (
	ChangeCreation ChangeType = "CREATION"
	ChangeEdition  ChangeType = "EDITION"
	ChangeDeletion ChangeType = "DELETION"
)

// HistoryEntry is one append-only record of a comment mutation.
//
//	creation: OldText nil, NewText set
//	edit:     both set
//	deletion: OldText set, NewText nil, CommentID nil
//
// CommentID is a plain back-reference without a foreign key so entries outlive their comment.
type HistoryEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID *uuid.UUID `gorm:"type:uuid;index:idx_comment_history_comment_id" json:"commentId"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_history_author_ts,priority:1" json:"authorId"`
	OldText   *string    `gorm:"type:text" json:"oldText"`
	NewText   *string    `gorm:"type:text" json:"newText"`
	Timestamp time.Time  `gorm:"column:changed_at;not null;index:idx_comment_history_author_ts,priority:2" json:"timestamp"`
}

// TableName specifies the table name for HistoryEntry
func (HistoryEntry) TableName() string {
	return "comment_history"
}

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	assignID(&h.ID)
	return nil
}

// Type derives the change type from the entry shape
func (h *HistoryEntry) Type() ChangeType {
	switch {
	case h.OldText == nil:
		return ChangeCreation
	case h.NewText == nil:
		return ChangeDeletion
	default:
		return ChangeEdition
	}
}

// NewCreationEntry records the creation of c
func NewCreationEntry(c *Comment) *HistoryEntry {
	id := c.ID
	text := c.Text
	return &HistoryEntry{
		CommentID: &id,
		AuthorID:  c.AuthorID,
		NewText:   &text,
		Timestamp: c.CreatedAt,
	}
}

// NewEditionEntry records a text change on c; c must already hold the new text
func NewEditionEntry(c *Comment, authorID uuid.UUID, oldText string) *HistoryEntry {
	id := c.ID
	newText := c.Text
	return &HistoryEntry{
		CommentID: &id,
		AuthorID:  authorID,
		OldText:   &oldText,
		NewText:   &newText,
		Timestamp: c.LastModifiedAt,
	}
}

// NewDeletionEntry records the removal of c at the given instant
func NewDeletionEntry(c *Comment, authorID uuid.UUID, at time.Time) *HistoryEntry {
	oldText := c.Text
	return &HistoryEntry{
		AuthorID:  authorID,
		OldText:   &oldText,
		Timestamp: at,
	}
}

// DownloadRecord is the audit record written once per history export
type DownloadRecord struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_download_records_requester_issued,priority:1" json:"requesterId"`
	TargetAuthorID uuid.UUID         `gorm:"type:uuid;not null;index:idx_download_records_target" json:"targetAuthorId"`
	IssuedAt       time.Time         `gorm:"not null;index:idx_download_records_requester_issued,priority:2" json:"issuedAt"`
	RangeStart     time.Time         `gorm:"not null" json:"rangeStart"`
	RangeEnd       time.Time         `gorm:"not null" json:"rangeEnd"`
	Format         string            `gorm:"type:varchar(16);not null" json:"format"`
	RequestMeta    datatypes.JSONMap `json:"requestMeta,omitempty"`

	Target *User `gorm:"foreignKey:TargetAuthorID" json:"-"`
}

// TableName specifies the table name for DownloadRecord
func (DownloadRecord) TableName() string {
	return "download_records"
}

func (d *DownloadRecord) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}
