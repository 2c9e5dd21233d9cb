// Package vad implements the streaming VAD filter between the sample
// transport and the backend stream: windowing, holdback,
// policy-driven speech-range extraction, and non-speech gain attenuation.
// The neural VAD model itself is a black box behind Detector.
package vad

// Segment is one speech range a Detector reports, in seconds relative to
// the start of the buffer passed to Detect.
type Segment struct {
	SpeechStartAt float64
	SpeechEndAt   float64
}

// Detector is the black-box VAD model contract: map a 16 kHz mono sample
// buffer to a list of speech time ranges. Implementations may carry
// internal state across calls (as silero-vad-go's triggered/tempEnd state
// machine does); Reset clears it between independent windows.
type Detector interface {
	Detect(samples []float32) ([]Segment, error)
	Reset() error
	Destroy() error
}
