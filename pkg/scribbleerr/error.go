// Package scribbleerr defines the error-kind taxonomy shared across the
// scribble pipeline: demux/decode, the audio pipeline, VAD, the incremental
// transcriber, backends, and encoders all report failures through it so a
// caller can branch on Kind without parsing messages.
package scribbleerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to branch on it (e.g. an
// HTTP wrapper mapping to a status code).
type Kind int

const (
	// Other wraps an external error whose cause doesn't fit the other kinds.
	Other Kind = iota
	// InvalidInput covers bad configuration or malformed metadata: zero
	// channels, a missing VAD model, an unrecognized output format.
	InvalidInput
	// Io covers reader/writer failures.
	Io
	// Decode covers demux probe, codec decode, resample, and audio-pipeline
	// failures.
	Decode
	// Backend covers model inference failures and missing/unknown model keys.
	Backend
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Io:
		return "io"
	case Decode:
		return "decode"
	case Backend:
		return "backend"
	default:
		return "other"
	}
}

// Error is the concrete error type returned across package boundaries. It
// carries a Kind plus the wrapped cause, and supports errors.Is/As/Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a plain message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err if it (or something it wraps) is *Error,
// otherwise Other.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Other
}

// Merge implements the orchestrator's shutdown merge policy: the
// earliest-ordered failure in the shutdown sequence (run/finish, then
// join, then close) wins as the primary error; later failures are
// attached as context rather than discarded.
func Merge(primary, secondary error) error {
	switch {
	case primary == nil && secondary == nil:
		return nil
	case primary == nil:
		return secondary
	case secondary == nil:
		return primary
	default:
		return Wrapf(KindOf(primary), primary, "also failed during shutdown: %v", secondary)
	}
}
