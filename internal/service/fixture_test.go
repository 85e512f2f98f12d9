package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"comment-history-api/internal/config"
	"comment-history-api/internal/database"
	"comment-history-api/internal/domain"
	"comment-history-api/internal/metrics"
	"comment-history-api/internal/repository"
	"comment-history-api/internal/response"
)

// stepClock advances by step on every reading so successive mutations get distinct timestamps
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

type fixture struct {
	db           *gorm.DB
	loc          *time.Location
	clock        *stepClock
	metrics      *metrics.Metrics
	targets      repository.TargetRepository
	commentRepo  repository.CommentRepository
	historyRepo  repository.HistoryRepository
	downloadRepo repository.DownloadRepository

	comments  CommentService
	trees     TreeService
	history   HistoryService
	downloads DownloadService
}

func openTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		// one connection keeps sqlite from reporting table locks between pool members
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := openTestDB(t)

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	f := &fixture{
		db:           db,
		loc:          loc,
		clock:        &stepClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), step: time.Second},
		metrics:      metrics.NewWithRegistry(prometheus.NewRegistry(), nil),
		targets:      repository.NewTargetRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		historyRepo:  repository.NewHistoryRepository(db),
		downloadRepo: repository.NewDownloadRepository(db),
	}
	logger := zap.NewNop()
	clock := Clock(f.clock.Now)

	f.comments = NewCommentService(db, f.commentRepo, f.historyRepo, f.targets, nil,
		config.PaginationConfig{PageSize: 10, MaxPageSize: 50}, clock, f.metrics, logger)
	f.trees = NewTreeService(f.commentRepo, f.targets, nil, loc, logger)
	f.downloads = NewDownloadService(f.downloadRepo, f.targets, clock, loc, logger)
	f.history = NewHistoryService(f.historyRepo, f.targets, f.downloads, clock, loc, f.metrics, logger)
	return f
}

func (f *fixture) user(t testing.TB, name string) *domain.User {
	t.Helper()
	u, err := f.targets.CreateUser(context.Background(), name)
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t testing.TB, name string) domain.TargetRef {
	t.Helper()
	id, err := f.targets.CreateRootObject(context.Background(), domain.TargetKindBlogPost, name)
	require.NoError(t, err)
	return domain.TargetRef{Kind: domain.TargetKindBlogPost, ID: id}
}

func (f *fixture) create(t testing.TB, author uuid.UUID, target domain.TargetRef, text string) *domain.Comment {
	t.Helper()
	c, err := f.comments.CreateComment(context.Background(), author, target, text)
	require.NoError(t, err)
	return c
}

func (f *fixture) reply(t testing.TB, author uuid.UUID, parent *domain.Comment, text string) *domain.Comment {
	t.Helper()
	return f.create(t, author, domain.TargetRef{Kind: domain.TargetKindComment, ID: parent.ID}, text)
}

func (f *fixture) ledger(t testing.TB, author uuid.UUID) []*domain.HistoryEntry {
	t.Helper()
	entries, err := findLedger(context.Background(), f.db, "author_id", author)
	require.NoError(t, err)
	return entries
}

func (f *fixture) commentLedger(t testing.TB, commentID uuid.UUID) []*domain.HistoryEntry {
	t.Helper()
	entries, err := findLedger(context.Background(), f.db, "comment_id", commentID)
	require.NoError(t, err)
	return entries
}

// findLedger loads entries in the order the export streams them
func findLedger(ctx context.Context, db *gorm.DB, column string, id uuid.UUID) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	err := db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("changed_at ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func errorCode(err error) string {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
