package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
)

// mockMetricsRecorder collects what the callbacks report
type mockMetricsRecorder struct {
	mu      sync.Mutex
	queries []queryRecord
	stats   int
}

type queryRecord struct {
	operation string
	table     string
	duration  time.Duration
	err       error
}

func (m *mockMetricsRecorder) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, queryRecord{operation, table, duration, err})
}

func (m *mockMetricsRecorder) UpdateDBStats(stats interface{}) {
	if _, ok := stats.(sql.DBStats); ok {
		m.mu.Lock()
		m.stats++
		m.mu.Unlock()
	}
}

func (m *mockMetricsRecorder) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = nil
}

func (m *mockMetricsRecorder) snapshot() []queryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queryRecord(nil), m.queries...)
}

func (m *mockMetricsRecorder) statsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// setupTestDB opens a private in-memory sqlite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := New(Config{
		Driver: DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestRegisterMetricsCallbacks_CRUD(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	user := &domain.User{Username: "alice"}
	require.NoError(t, db.Create(user).Error)

	var found domain.User
	require.NoError(t, db.Where("id = ?", user.ID).Take(&found).Error)
	require.NoError(t, db.Model(&found).Update("username", "alice2").Error)
	require.NoError(t, db.Delete(&found).Error)

	queries := recorder.snapshot()
	require.Len(t, queries, 4)
	for i, op := range []string{"insert", "select", "update", "delete"} {
		assert.Equal(t, op, queries[i].operation)
		assert.Equal(t, "users", queries[i].table)
		assert.NoError(t, queries[i].err)
	}
}

func TestRegisterMetricsCallbacks_RowCursor(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))
	recorder.reset()

	rows, err := db.Model(&domain.HistoryEntry{}).Where("author_id = ?", uuid.New()).Rows()
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	queries := recorder.snapshot()
	require.Len(t, queries, 1)
	assert.Equal(t, "select", queries[0].operation)
	assert.Equal(t, "comment_history", queries[0].table)
}

func TestRegisterMetricsCallbacks_QueryError(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	var user domain.User
	err := db.Where("id = ?", uuid.New()).Take(&user).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	queries := recorder.snapshot()
	require.Len(t, queries, 1)
	assert.Error(t, queries[0].err)
}

func TestRegisterMetricsCallbacks_CreateError(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	require.NoError(t, db.Create(&domain.User{Username: "dup"}).Error)
	recorder.reset()

	// unique index on username
	require.Error(t, db.Create(&domain.User{Username: "dup"}).Error)

	queries := recorder.snapshot()
	require.Len(t, queries, 1)
	assert.Equal(t, "insert", queries[0].operation)
	assert.Error(t, queries[0].err)
}

func TestRegisterMetricsCallbacks_Transaction(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&domain.User{Username: "t1"}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.User{Username: "t2"}).Error
	})
	require.NoError(t, err)

	assert.Len(t, recorder.snapshot(), 2)
}

func TestStartDBStatsCollector_StopsWithContext(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	StartDBStatsCollector(ctx, db, recorder, 10*time.Millisecond)

	require.Eventually(t, func() bool { return recorder.statsCalls() > 0 }, time.Second, 5*time.Millisecond)
	cancel()
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestSafeAutoMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	// tables already exist from setupTestDB; a second pass only diffs the schema
	require.NoError(t, SafeAutoMigrate(db, zap.NewNop()))

	for _, m := range models() {
		assert.True(t, db.Migrator().HasTable(m.model), m.tableName)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, Ping(context.Background(), db))
	assert.Error(t, Ping(context.Background(), nil))
}
