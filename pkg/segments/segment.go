// Package segments defines the output record emitted by the incremental
// transcriber and the streaming encoders (JSON array, WebVTT) that render a
// sequence of them to an output writer.
package segments

import "github.com/itsmontoya/scribble/pkg/token"

// Segment is one finalized span of transcribed audio.
type Segment struct {
	StartSeconds    float32       `json:"startSeconds"`
	EndSeconds      float32       `json:"endSeconds"`
	Text            string        `json:"text"`
	Tokens          []token.Token `json:"tokens"`
	LanguageCode    string        `json:"languageCode"`
	NextSpeakerTurn bool          `json:"nextSpeakerTurn"`
}

// Encoder is the shared interface for both output formats: writes stream,
// defer any header/opening token until the first write, idempotent Close,
// error on write-after-close.
type Encoder interface {
	WriteSegment(seg Segment) error
	Close() error
}
