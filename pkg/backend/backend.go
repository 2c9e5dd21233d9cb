// Package backend defines the ASR engine contract and a
// concrete implementation over whisper.cpp's Go bindings. The model itself
// stays a black box; this package only adapts its API shape to the
// segment-encoder and incremental-transcriber contracts.
package backend

import (
	"github.com/itsmontoya/scribble/pkg/segments"
)

// Opts is the subset of the library-wide configuration a backend needs.
type Opts struct {
	ModelKey                    string
	EnableTranslateToEnglish    bool
	Language                    string
	IncrementalMinWindowSeconds uint
	EmitSingleSegments          bool
}

// Stream is the streaming mode handle returned by CreateStream: onSamples
// feeds one chunk at a time, Finish flushes. The caller owns the encoder's
// lifecycle (Close is never called by a Stream).
type Stream interface {
	OnSamples(chunk []float32) error
	Finish() error
}

// Backend is the ASR engine contract. TranscribeFull is batch mode: it
// writes zero or more segments and does not close encoder. CreateStream is
// streaming mode, typically implemented over the incremental transcriber.
type Backend interface {
	TranscribeFull(opts Opts, encoder segments.Encoder, samples []float32) error
	CreateStream(opts Opts, encoder segments.Encoder) (Stream, error)
}
