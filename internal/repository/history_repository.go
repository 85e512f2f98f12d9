package repository

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
)

// HistoryCursor iterates history entries row by row. Next returns io.EOF after the last row.
type HistoryCursor interface {
	Next() (*domain.HistoryEntry, error)
	Close() error
}

// HistoryRepository is the append-only ledger store
type HistoryRepository interface {
	WithTx(tx *gorm.DB) HistoryRepository
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	StreamByAuthor(ctx context.Context, authorID uuid.UUID, from, to *time.Time) (HistoryCursor, error)
	Count(ctx context.Context) (int64, error)
}

type historyRepositoryImpl struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new instance of HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepositoryImpl{db: db}
}

func (r *historyRepositoryImpl) WithTx(tx *gorm.DB) HistoryRepository {
	return &historyRepositoryImpl{db: tx}
}

func (r *historyRepositoryImpl) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// StreamByAuthor opens a cursor over the author's entries inside the inclusive window.
// A nil bound leaves that side open. The caller must Close the cursor.
func (r *historyRepositoryImpl) StreamByAuthor(ctx context.Context, authorID uuid.UUID, from, to *time.Time) (HistoryCursor, error) {
	query := r.authorQuery(ctx, authorID, from, to)
	rows, err := query.Rows()
	if err != nil {
		return nil, err
	}
	return &historyCursor{db: query, rows: rows}, nil
}

func (r *historyRepositoryImpl) authorQuery(ctx context.Context, authorID uuid.UUID, from, to *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.HistoryEntry{}).Where("author_id = ?", authorID)
	if from != nil {
		query = query.Where("changed_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("changed_at <= ?", to.UTC())
	}
	return query.Order("changed_at ASC").Order("id ASC")
}

func (r *historyRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.HistoryEntry{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type historyCursor struct {
	db     *gorm.DB
	rows   *sql.Rows
	closed bool
}

func (c *historyCursor) Next() (*domain.HistoryEntry, error) {
	if c.closed {
		return nil, io.EOF
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var entry domain.HistoryEntry
	if err := c.db.ScanRows(c.rows, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *historyCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}
