package export

import (
	"context"
	"errors"
	"io"
	"time"

	"comment-history-api/internal/domain"
)

// Source yields history entries in output order. Next returns io.EOF after the last entry.
type Source interface {
	Next() (*domain.HistoryEntry, error)
	Close() error
}

type encoderState int

const (
	stateNotStarted encoderState = iota
	stateMidSequence
	stateFinished
)

// Encoder turns a Source into a lazy chunk sequence: one prefix chunk, one chunk per entry, one suffix chunk.
// It never buffers more than a single entry.
type Encoder struct {
	format  Format
	frame   framing
	source  Source
	state   encoderState
	entries int
	closed  bool
}

// NewEncoder creates an encoder; dates are rendered in loc
func NewEncoder(format Format, source Source, loc *time.Location) *Encoder {
	return &Encoder{
		format: format,
		frame:  framingFor(format, loc),
		source: source,
	}
}

// Format returns the encoder's output format
func (e *Encoder) Format() Format {
	return e.format
}

// Entries returns how many entries were emitted so far
func (e *Encoder) Entries() int {
	return e.entries
}

// Next returns the next chunk, or io.EOF once the suffix was emitted.
// A cancelled ctx stops production and closes the source.
func (e *Encoder) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		_ = e.Close()
		return nil, err
	}

	switch e.state {
	case stateNotStarted:
		e.state = stateMidSequence
		return e.frame.prefix(), nil

	case stateMidSequence:
		entry, err := e.source.Next()
		if errors.Is(err, io.EOF) {
			e.state = stateFinished
			if cerr := e.Close(); cerr != nil {
				return nil, cerr
			}
			return e.frame.suffix(), nil
		}
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		chunk, err := e.frame.entry(entry, e.entries == 0)
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		e.entries++
		return chunk, nil

	default:
		return nil, io.EOF
	}
}

// Close releases the source; it is safe to call more than once
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.state = stateFinished
	return e.source.Close()
}

// Drain writes every remaining chunk to w, stopping at the first write error or cancellation
func (e *Encoder) Drain(ctx context.Context, w io.Writer) (int64, error) {
	var written int64
	for {
		chunk, err := e.Next(ctx)
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			_ = e.Close()
			return written, err
		}
	}
}
