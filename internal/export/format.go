package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"comment-history-api/internal/domain"
)

// Format is an export serialization
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat accepts text (alias txt), json and xml, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Extension is the file extension used in the suggested file name
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// ContentType is the media type of the stream
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName is the suggested attachment name for an export of the given author
func FileName(targetAuthor string, f Format) string {
	return "history-" + targetAuthor + "." + f.Extension()
}

// FormatDate renders t in loc as "2006-01-02 15:04:05[.ffffff]-07:00",
// printing microseconds only when they are non-zero.
func FormatDate(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	layout := "2006-01-02 15:04:05-07:00"
	if t.Nanosecond()/1000 != 0 {
		layout = "2006-01-02 15:04:05.000000-07:00"
	}
	return t.Format(layout)
}

// framing writes the per-format prefix, entry blocks and suffix
type framing interface {
	prefix() []byte
	entry(e *domain.HistoryEntry, first bool) ([]byte, error)
	suffix() []byte
}

func framingFor(f Format, loc *time.Location) framing {
	switch f {
	case FormatJSON:
		return jsonFraming{loc: loc}
	case FormatXML:
		return xmlFraming{loc: loc}
	default:
		return textFraming{loc: loc}
	}
}

var textSeparator = strings.Repeat("=", 50) + "\n"

type textFraming struct {
	loc *time.Location
}

func (textFraming) prefix() []byte { return []byte(textSeparator) }
func (textFraming) suffix() []byte { return []byte("\n") }

func (f textFraming) entry(e *domain.HistoryEntry, _ bool) ([]byte, error) {
	date := FormatDate(e.Timestamp, f.loc)
	var b strings.Builder
	switch e.Type() {
	case domain.ChangeCreation:
		fmt.Fprintf(&b, "TYPE: <CREATION>\n%s\nTEXT:\n%s\n", date, *e.NewText)
	case domain.ChangeDeletion:
		fmt.Fprintf(&b, "TYPE: <DELETION>\n%s\nTEXT:\n%s\n", date, *e.OldText)
	default:
		fmt.Fprintf(&b, "TYPE: <EDITION>\n%s\nOLD TEXT:\n%s\nNEW TEXT:\n%s\n", date, *e.OldText, *e.NewText)
	}
	b.WriteString(textSeparator)
	return []byte(b.String()), nil
}

type jsonFraming struct {
	loc *time.Location
}

// field order is part of the output contract
type jsonEntry struct {
	Date    string  `json:"date"`
	OldText *string `json:"old_text"`
	NewText *string `json:"new_text"`
}

func (jsonFraming) prefix() []byte { return []byte("[\n") }
func (jsonFraming) suffix() []byte { return []byte("\n]") }

func (f jsonFraming) entry(e *domain.HistoryEntry, first bool) ([]byte, error) {
	var buf bytes.Buffer
	if !first {
		buf.WriteString(",\n")
	}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonEntry{
		Date:    FormatDate(e.Timestamp, f.loc),
		OldText: e.OldText,
		NewText: e.NewText,
	}); err != nil {
		return nil, err
	}
	// Encode terminates with a newline; the separator carries its own
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type xmlFraming struct {
	loc *time.Location
}

func (xmlFraming) prefix() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n<history>")
}
func (xmlFraming) suffix() []byte { return []byte("\n</history>") }

func (f xmlFraming) entry(e *domain.HistoryEntry, _ bool) ([]byte, error) {
	lines := []string{
		"<date>" + escapeXML(FormatDate(e.Timestamp, f.loc)) + "</date>",
		"<type>" + string(e.Type()) + "</type>",
	}
	switch e.Type() {
	case domain.ChangeCreation:
		lines = append(lines, "<comment>"+escapeXML(*e.NewText)+"</comment>")
	case domain.ChangeDeletion:
		lines = append(lines, "<comment>"+escapeXML(*e.OldText)+"</comment>")
	default:
		lines = append(lines,
			"<old>"+escapeXML(*e.OldText)+"</old>",
			"<new>"+escapeXML(*e.NewText)+"</new>",
		)
	}

	var b strings.Builder
	b.WriteString("\n  <change>\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("    ")
		b.WriteString(line)
	}
	b.WriteString("\n  </change>")
	return []byte(b.String()), nil
}

func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
