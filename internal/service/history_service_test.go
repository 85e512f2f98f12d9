package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"comment-history-api/internal/domain"
	reqdto "comment-history-api/internal/dto"
	"comment-history-api/internal/export"
	"comment-history-api/internal/response"
)

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.Counter.GetValue()
}

type jsonChange struct {
	Date    string  `json:"date"`
	OldText *string `json:"old_text"`
	NewText *string `json:"new_text"`
}

func drain(t *testing.T, res *ExportResult) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := res.Encoder.Drain(context.Background(), &buf)
	require.NoError(t, err)
	return buf.String()
}

// four creations, one edit, one deletion
func seedHistory(t *testing.T, f *fixture, author uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	post := f.post(t, "post")
	c1 := f.create(t, author, post, "one")
	f.create(t, author, post, "two")
	f.create(t, author, post, "three")
	c4 := f.reply(t, author, c1, "four")
	require.NoError(t, f.comments.EditComment(ctx, author, c1.ID, "one, edited"))
	require.NoError(t, f.comments.DeleteComment(ctx, author, c4.ID))
}

func TestHistoryService_ExportJSON(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	seedHistory(t, f, alice.ID)
	// someone else's activity stays out of the export
	f.create(t, bob.ID, f.post(t, "other"), "bob was here")

	res, err := f.history.Export(ctx, ExportRequest{
		RequesterID:    bob.ID,
		TargetAuthorID: alice.ID,
		Format:         export.FormatJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, "history-"+alice.ID.String()+".json", res.FileName)

	var changes []jsonChange
	require.NoError(t, json.Unmarshal([]byte(drain(t, res)), &changes))
	require.Len(t, changes, 6)

	var kinds []domain.ChangeType
	for _, c := range changes {
		kinds = append(kinds, (&domain.HistoryEntry{OldText: c.OldText, NewText: c.NewText}).Type())
	}
	assert.Equal(t, []domain.ChangeType{
		domain.ChangeCreation, domain.ChangeCreation, domain.ChangeCreation, domain.ChangeCreation,
		domain.ChangeEdition, domain.ChangeDeletion,
	}, kinds)
	assert.Equal(t, "one", *changes[4].OldText)
	assert.Equal(t, "one, edited", *changes[4].NewText)
	assert.Equal(t, "four", *changes[5].OldText)
	assert.Contains(t, changes[0].Date, "+03:00")

	records, err := f.downloadRepo.FindByRequester(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "json", records[0].Format)
	assert.Equal(t, alice.ID, records[0].TargetAuthorID)

	assert.Equal(t, 1.0, counterValue(t, f.metrics.ExportsTotal.WithLabelValues("json")))
	assert.Equal(t, 6.0, counterValue(t, f.metrics.ExportEntriesTotal))
	assert.Equal(t, 0.0, counterValue(t, f.metrics.ExportsAbortedTotal))
}

func TestHistoryService_ExportDefaultsRecordedBounds(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	res, err := f.history.Export(context.Background(), ExportRequest{
		RequesterID:    alice.ID,
		TargetAuthorID: alice.ID,
		Format:         export.FormatText,
	})
	require.NoError(t, err)
	drain(t, res)

	rec := res.Record
	assert.True(t, rec.RangeStart.Equal(time.Date(2016, 11, 20, 13, 0, 0, 0, time.UTC)), "start %s", rec.RangeStart)
	assert.True(t, rec.RangeEnd.Equal(rec.IssuedAt))
}

func TestHistoryService_ExportWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, "post")

	var created []*domain.Comment
	for _, text := range []string{"a", "b", "c", "d"} {
		created = append(created, f.create(t, alice.ID, post, text))
	}

	// inclusive on both ends
	res, err := f.history.Export(ctx, ExportRequest{
		RequesterID:    alice.ID,
		TargetAuthorID: alice.ID,
		From:           reqdto.NewDateBound(created[1].CreatedAt),
		To:             reqdto.NewDateBound(created[2].CreatedAt),
		Format:         export.FormatJSON,
	})
	require.NoError(t, err)

	var changes []jsonChange
	require.NoError(t, json.Unmarshal([]byte(drain(t, res)), &changes))
	require.Len(t, changes, 2)
	assert.Equal(t, "b", *changes[0].NewText)
	assert.Equal(t, "c", *changes[1].NewText)
	assert.True(t, res.Record.RangeStart.Equal(created[1].CreatedAt))
	assert.True(t, res.Record.RangeEnd.Equal(created[2].CreatedAt))
}

func TestHistoryService_ExportDatePartsUseDisplayLocation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	var from reqdto.DateBound
	require.NoError(t, json.Unmarshal([]byte(`[2024, 5, 1, 12, 0]`), &from))

	res, err := f.history.Export(context.Background(), ExportRequest{
		RequesterID:    alice.ID,
		TargetAuthorID: alice.ID,
		From:           from,
		Format:         export.FormatXML,
	})
	require.NoError(t, err)
	drain(t, res)

	// 12:00 Moscow
	assert.True(t, res.Record.RangeStart.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
}

func TestHistoryService_ExportErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	now := time.Now()

	tests := []struct {
		name     string
		req      ExportRequest
		wantCode string
	}{
		{
			name:     "실패: unknown target user",
			req:      ExportRequest{RequesterID: alice.ID, TargetAuthorID: uuid.New(), Format: export.FormatJSON},
			wantCode: response.ErrCodeNotFound,
		},
		{
			name: "실패: start after end",
			req: ExportRequest{
				RequesterID: alice.ID, TargetAuthorID: alice.ID, Format: export.FormatJSON,
				From: reqdto.NewDateBound(now), To: reqdto.NewDateBound(now.Add(-time.Hour)),
			},
			wantCode: response.ErrCodeValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.history.Export(ctx, tt.req)
			assert.Equal(t, tt.wantCode, errorCode(err))
		})
	}

	// failed validation writes no record
	records, err := f.downloadRepo.FindByRequester(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryService_CancelledExportClosesCursor(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	seedHistory(t, f, alice.ID)

	// the pool's own goroutines are not ours to check
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	res, err := f.history.Export(ctx, ExportRequest{
		RequesterID:    alice.ID,
		TargetAuthorID: alice.ID,
		Format:         export.FormatText,
	})
	require.NoError(t, err)

	_, err = res.Encoder.Next(ctx) // prefix
	require.NoError(t, err)
	_, err = res.Encoder.Next(ctx) // first entry
	require.NoError(t, err)

	cancel()
	_, err = res.Encoder.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Encoder.Entries())

	// the record survives and the single pooled connection is usable again
	views, err := f.downloads.ListDownloads(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, 1.0, counterValue(t, f.metrics.ExportsAbortedTotal))
}

func TestDownloadService_ListDownloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	for _, target := range []uuid.UUID{bob.ID, alice.ID} {
		res, err := f.history.Export(ctx, ExportRequest{RequesterID: alice.ID, TargetAuthorID: target, Format: export.FormatXML})
		require.NoError(t, err)
		drain(t, res)
	}

	first, err := f.downloads.ListDownloads(ctx, alice.ID)
	require.NoError(t, err)
	second, err := f.downloads.ListDownloads(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 2)
	assert.Equal(t, reqdto.TargetView{ID: bob.ID, Username: "bob"}, first[0].Target)
	assert.Equal(t, reqdto.TargetView{ID: alice.ID, Username: "alice"}, first[1].Target)
	assert.True(t, first[0].IssuedAt.Before(first[1].IssuedAt))
	assert.Equal(t, "xml", first[0].Format)
	_, offset := first[0].IssuedAt.Zone()
	assert.Equal(t, 3*60*60, offset)

	// bob issued nothing
	none, err := f.downloads.ListDownloads(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.downloads.ListDownloads(ctx, uuid.New())
	assert.Equal(t, response.ErrCodeNotFound, errorCode(err))
}

func TestDownloadService_RecordDownloadStampsIssueTime(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	rec := &domain.DownloadRecord{
		RequesterID:    alice.ID,
		TargetAuthorID: alice.ID,
		RangeStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, f.loc),
		RangeEnd:       time.Date(2024, 2, 1, 0, 0, 0, 0, f.loc),
		Format:         "text",
		RequestMeta:    map[string]interface{}{"client_ip": "10.0.0.1"},
	}
	require.NoError(t, f.downloads.RecordDownload(context.Background(), rec))
	assert.False(t, rec.IssuedAt.IsZero())
	assert.NotEqual(t, uuid.Nil, rec.ID)

	stored, err := f.downloadRepo.FindByRequester(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "10.0.0.1", stored[0].RequestMeta["client_ip"])
	assert.True(t, stored[0].RangeStart.Equal(rec.RangeStart))
}
