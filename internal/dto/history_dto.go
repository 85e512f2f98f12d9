package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportHistoryRequest asks for the history of one author
// @Description from/to accept an RFC3339 string or [year, month, day, hour, minute, second, microsecond]
// @Description (trailing elements optional) interpreted in the display timezone; both bounds are inclusive.
// @Description A bare YYYY-MM-DD or [y, m, d] is midnight at the start of that day, so as the upper bound it excludes the rest of the day.
type ExportHistoryRequest struct {
	UserID string    `json:"userId" binding:"required" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	// Inclusive lower bound
	From   DateBound `json:"from" swaggertype:"string" example:"2024-01-01T00:00:00+03:00"`
	// Inclusive upper bound. A bare date means 00:00 of that day; pass the next day or an explicit time to include it.
	To     DateBound `json:"to" swaggertype:"string" example:"2024-12-31T23:59:59+03:00"`
	Format string    `json:"format" binding:"required" example:"json"`
}

// DateBound is an optional export window bound.
// It is either an absolute instant or a list of calendar parts resolved against a location.
type DateBound struct {
	set   bool
	abs   time.Time
	parts []int
}

// NewDateBound returns a bound at an absolute instant
func NewDateBound(t time.Time) DateBound {
	return DateBound{set: true, abs: t}
}

// IsSet reports whether the bound was provided
func (d DateBound) IsSet() bool {
	return d.set
}

// In resolves the bound; calendar parts are interpreted in loc
func (d DateBound) In(loc *time.Location) (time.Time, error) {
	if !d.set {
		return time.Time{}, fmt.Errorf("date bound not set")
	}
	if d.parts == nil {
		return d.abs, nil
	}
	return datePartsIn(d.parts, loc)
}

// UnmarshalJSON accepts null, an RFC3339 string or an int array
func (d *DateBound) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = DateBound{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseDateBound(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var parts []int
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("date must be an RFC3339 string or an integer list: %w", err)
	}
	if err := validateParts(parts); err != nil {
		return err
	}
	*d = DateBound{set: true, parts: parts}
	return nil
}

// MarshalJSON renders absolute bounds as RFC3339 and calendar bounds as their list
func (d DateBound) MarshalJSON() ([]byte, error) {
	switch {
	case !d.set:
		return []byte("null"), nil
	case d.parts != nil:
		return json.Marshal(d.parts)
	default:
		return json.Marshal(d.abs.Format(time.RFC3339Nano))
	}
}

// ParseDateBound parses a textual bound: empty, RFC3339, a bare date, or a JSON int list
func ParseDateBound(s string) (DateBound, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateBound{}, nil
	}
	if strings.HasPrefix(s, "[") {
		var d DateBound
		if err := d.UnmarshalJSON([]byte(s)); err != nil {
			return DateBound{}, err
		}
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDateBound(t), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateBound{set: true, parts: []int{t.Year(), int(t.Month()), t.Day()}}, nil
	}
	return DateBound{}, fmt.Errorf("invalid date %q: expected RFC3339, YYYY-MM-DD or an integer list", s)
}

func validateParts(parts []int) error {
	if len(parts) < 3 || len(parts) > 7 {
		return fmt.Errorf("date list needs 3 to 7 elements, got %d", len(parts))
	}
	_, err := datePartsIn(parts, time.UTC)
	return err
}

func datePartsIn(parts []int, loc *time.Location) (time.Time, error) {
	var p [7]int
	copy(p[:], parts)
	year, month, day, hour, minute, sec, usec := p[0], p[1], p[2], p[3], p[4], p[5], p[6]

	if month < 1 || month > 12 || day < 1 || hour < 0 || hour > 23 ||
		minute < 0 || minute > 59 || sec < 0 || sec > 59 || usec < 0 || usec > 999999 {
		return time.Time{}, fmt.Errorf("date list %v is out of range", parts)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, usec*1000, loc)
	// time.Date normalizes overflowing days (Feb 30 -> Mar 2); reject those
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("date list %v is out of range", parts)
	}
	return t, nil
}

// TargetView is the display form of a user referenced by a download record
type TargetView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// DownloadRecordView is one entry of a user's download listing
type DownloadRecordView struct {
	ID         uuid.UUID  `json:"id"`
	Target     TargetView `json:"target"`
	IssuedAt   time.Time  `json:"issuedAt"`
	RangeStart time.Time  `json:"rangeStart"`
	RangeEnd   time.Time  `json:"rangeEnd"`
	Format     string     `json:"format"`
}
