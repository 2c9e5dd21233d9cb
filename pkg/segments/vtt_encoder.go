package segments

import (
	"fmt"
	"io"
	"math"

	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// VTTEncoder streams segments to w as WebVTT cues. The "WEBVTT\n\n" header
// is deferred to the first write, so a zero-segment run produces an empty
// file rather than a header-only document. Close is idempotent; writes
// after Close fail.
type VTTEncoder struct {
	w       io.Writer
	started bool
	closed  bool
}

// NewVTTEncoder wraps w.
func NewVTTEncoder(w io.Writer) *VTTEncoder {
	return &VTTEncoder{w: w}
}

func (e *VTTEncoder) WriteSegment(seg Segment) error {
	if e.closed {
		return scribbleerr.New(scribbleerr.InvalidInput, "write to vtt encoder after close")
	}
	if !e.started {
		if _, err := io.WriteString(e.w, "WEBVTT\n\n"); err != nil {
			return scribbleerr.Wrap(scribbleerr.Io, "write vtt header", err)
		}
		e.started = true
	}
	cue := fmt.Sprintf("%s --> %s\n%s\n\n",
		formatTimestamp(seg.StartSeconds), formatTimestamp(seg.EndSeconds), seg.Text)
	if _, err := io.WriteString(e.w, cue); err != nil {
		return scribbleerr.Wrap(scribbleerr.Io, "write vtt cue", err)
	}
	return flushIfPossible(e.w)
}

func (e *VTTEncoder) Close() error {
	e.closed = true
	return nil
}

// formatTimestamp renders seconds as HH:MM:SS.mmm, rounding to the nearest
// millisecond (half rounds up).
func formatTimestamp(seconds float32) string {
	totalMs := int64(math.Round(float64(seconds) * 1000))
	if totalMs < 0 {
		totalMs = 0
	}
	hours := totalMs / 3_600_000
	totalMs %= 3_600_000
	minutes := totalMs / 60_000
	totalMs %= 60_000
	secs := totalMs / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms)
}
