package export

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"comment-history-api/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sliceSource struct {
	entries []*domain.HistoryEntry
	pos     int
	closes  int
	failAt  int
}

func (s *sliceSource) Next() (*domain.HistoryEntry, error) {
	if s.failAt > 0 && s.pos == s.failAt {
		return nil, errors.New("connection reset")
	}
	if s.pos >= len(s.entries) {
		return nil, io.EOF
	}
	e := s.entries[s.pos]
	s.pos++
	return e, nil
}

func (s *sliceSource) Close() error {
	s.closes++
	return nil
}

func strPtr(s string) *string { return &s }

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

// 10:00 UTC is 13:00 in Moscow
var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleEntries() []*domain.HistoryEntry {
	author := uuid.New()
	return []*domain.HistoryEntry{
		{AuthorID: author, NewText: strPtr("hello"), Timestamp: base},
		{AuthorID: author, OldText: strPtr("hello"), NewText: strPtr("hello <b>world</b>"), Timestamp: base.Add(time.Minute + 1500*time.Microsecond)},
		{AuthorID: author, OldText: strPtr("hello <b>world</b>"), Timestamp: base.Add(time.Hour)},
	}
}

func render(t *testing.T, f Format, entries []*domain.HistoryEntry) string {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(f, &sliceSource{entries: entries}, moscow(t))
	_, err := enc.Drain(context.Background(), &buf)
	require.NoError(t, err)
	return buf.String()
}

func TestFormatDate(t *testing.T) {
	loc := moscow(t)
	assert.Equal(t, "2024-03-01 13:00:00+03:00", FormatDate(base, loc))
	assert.Equal(t, "2024-03-01 13:00:00.001500+03:00", FormatDate(base.Add(1500*time.Microsecond), loc))
	// sub-microsecond precision is not rendered
	assert.Equal(t, "2024-03-01 13:00:00+03:00", FormatDate(base.Add(999*time.Nanosecond), loc))
	assert.Equal(t, "2024-03-01 10:00:00+00:00", FormatDate(base, time.UTC))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"txt", FormatText, false},
		{"JSON", FormatJSON, false},
		{" xml ", FormatXML, false},
		{"csv", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "history-42.txt", FileName("42", FormatText))
	assert.Equal(t, "history-42.json", FileName("42", FormatJSON))
	assert.Equal(t, "history-42.xml", FileName("42", FormatXML))
	assert.Equal(t, "text/plain; charset=utf-8", FormatText.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "application/xml", FormatXML.ContentType())
}

func TestEncoder_Text(t *testing.T) {
	sep := strings.Repeat("=", 50) + "\n"
	want := sep +
		"TYPE: <CREATION>\n2024-03-01 13:00:00+03:00\nTEXT:\nhello\n" + sep +
		"TYPE: <EDITION>\n2024-03-01 13:01:00.001500+03:00\nOLD TEXT:\nhello\nNEW TEXT:\nhello <b>world</b>\n" + sep +
		"TYPE: <DELETION>\n2024-03-01 14:00:00+03:00\nTEXT:\nhello <b>world</b>\n" + sep +
		"\n"

	assert.Equal(t, want, render(t, FormatText, sampleEntries()))
}

func TestEncoder_JSON(t *testing.T) {
	want := "[\n" +
		"{\n  \"date\": \"2024-03-01 13:00:00+03:00\",\n  \"old_text\": null,\n  \"new_text\": \"hello\"\n}" +
		",\n{\n  \"date\": \"2024-03-01 13:01:00.001500+03:00\",\n  \"old_text\": \"hello\",\n  \"new_text\": \"hello <b>world</b>\"\n}" +
		",\n{\n  \"date\": \"2024-03-01 14:00:00+03:00\",\n  \"old_text\": \"hello <b>world</b>\",\n  \"new_text\": null\n}" +
		"\n]"

	out := render(t, FormatJSON, sampleEntries())
	assert.Equal(t, want, out)

	var parsed []map[string]*string
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Len(t, parsed, 3)
}

func TestEncoder_XML(t *testing.T) {
	want := `<?xml version="1.0" encoding="UTF-8" ?>` + "\n<history>" +
		"\n  <change>\n    <date>2024-03-01 13:00:00+03:00</date>\n    <type>CREATION</type>\n    <comment>hello</comment>\n  </change>" +
		"\n  <change>\n    <date>2024-03-01 13:01:00.001500+03:00</date>\n    <type>EDITION</type>\n    <old>hello</old>\n    <new>hello &lt;b&gt;world&lt;/b&gt;</new>\n  </change>" +
		"\n  <change>\n    <date>2024-03-01 14:00:00+03:00</date>\n    <type>DELETION</type>\n    <comment>hello &lt;b&gt;world&lt;/b&gt;</comment>\n  </change>" +
		"\n</history>"

	out := render(t, FormatXML, sampleEntries())
	assert.Equal(t, want, out)

	var doc struct {
		Changes []struct {
			Type string `xml:"type"`
			New  string `xml:"new"`
		} `xml:"change"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Changes, 3)
	assert.Equal(t, "hello <b>world</b>", doc.Changes[1].New)
}

func TestEncoder_ReportsFormat(t *testing.T) {
	for _, f := range []Format{FormatText, FormatJSON, FormatXML} {
		enc := NewEncoder(f, &sliceSource{}, time.UTC)
		assert.Equal(t, f, enc.Format())
		assert.Zero(t, enc.Entries())
	}
}

func TestEncoder_EmptySource(t *testing.T) {
	sep := strings.Repeat("=", 50) + "\n"
	assert.Equal(t, sep+"\n", render(t, FormatText, nil))
	assert.Equal(t, "[\n\n]", render(t, FormatJSON, nil))
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8" ?>`+"\n<history>\n</history>", render(t, FormatXML, nil))
}

func TestEncoder_ChunkPerEntry(t *testing.T) {
	src := &sliceSource{entries: sampleEntries()}
	enc := NewEncoder(FormatJSON, src, time.UTC)
	ctx := context.Background()

	var chunks int
	for {
		_, err := enc.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		chunks++
	}

	// prefix + 3 entries + suffix
	assert.Equal(t, 5, chunks)
	assert.Equal(t, 3, enc.Entries())
	assert.Equal(t, 1, src.closes)

	// further calls stay at EOF
	_, err := enc.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, src.closes)
}

func TestEncoder_CancellationClosesSource(t *testing.T) {
	src := &sliceSource{entries: sampleEntries()}
	enc := NewEncoder(FormatText, src, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := enc.Next(ctx)
	require.NoError(t, err)
	_, err = enc.Next(ctx)
	require.NoError(t, err)

	cancel()
	_, err = enc.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.closes)
	assert.Equal(t, 1, src.pos, "no entry may be read after cancellation")

	_, err = enc.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestEncoder_SourceErrorStopsStream(t *testing.T) {
	src := &sliceSource{entries: sampleEntries(), failAt: 2}
	enc := NewEncoder(FormatXML, src, time.UTC)

	var buf bytes.Buffer
	_, err := enc.Drain(context.Background(), &buf)
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, 1, src.closes)
	assert.NotContains(t, buf.String(), "</history>")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("client went away") }

func TestEncoder_DrainWriteErrorClosesSource(t *testing.T) {
	src := &sliceSource{entries: sampleEntries()}
	enc := NewEncoder(FormatText, src, time.UTC)

	_, err := enc.Drain(context.Background(), failingWriter{})
	assert.EqualError(t, err, "client went away")
	assert.Equal(t, 1, src.closes)
}
