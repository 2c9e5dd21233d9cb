package segments

import (
	"encoding/json"
	"io"

	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// JSONArrayEncoder streams segments to w as a single JSON array. The
// opening "[" is deferred to the first write (or to Close, for a
// zero-segment run) so an unused encoder still produces a valid empty
// array. Close is idempotent; writes after Close fail.
type JSONArrayEncoder struct {
	w       io.Writer
	started bool
	wrote   bool
	closed  bool
}

// NewJSONArrayEncoder wraps w. Callers typically pass a *bufio.Writer.
func NewJSONArrayEncoder(w io.Writer) *JSONArrayEncoder {
	return &JSONArrayEncoder{w: w}
}

func (e *JSONArrayEncoder) WriteSegment(seg Segment) error {
	if e.closed {
		return scribbleerr.New(scribbleerr.InvalidInput, "write to json encoder after close")
	}
	if !e.started {
		if _, err := io.WriteString(e.w, "["); err != nil {
			return scribbleerr.Wrap(scribbleerr.Io, "write json array open", err)
		}
		e.started = true
	}
	if e.wrote {
		if _, err := io.WriteString(e.w, ","); err != nil {
			return scribbleerr.Wrap(scribbleerr.Io, "write json separator", err)
		}
	}
	b, err := json.Marshal(seg)
	if err != nil {
		return scribbleerr.Wrap(scribbleerr.Other, "marshal segment", err)
	}
	if _, err := e.w.Write(b); err != nil {
		return scribbleerr.Wrap(scribbleerr.Io, "write json segment", err)
	}
	e.wrote = true
	return flushIfPossible(e.w)
}

func (e *JSONArrayEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if !e.started {
		if _, err := io.WriteString(e.w, "["); err != nil {
			return scribbleerr.Wrap(scribbleerr.Io, "write json array open", err)
		}
	}
	if _, err := io.WriteString(e.w, "]"); err != nil {
		return scribbleerr.Wrap(scribbleerr.Io, "write json array close", err)
	}
	return flushIfPossible(e.w)
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return scribbleerr.Wrap(scribbleerr.Io, "flush", err)
		}
	}
	return nil
}
