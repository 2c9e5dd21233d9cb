//go:build vad

package vad

import (
	"github.com/streamer45/silero-vad-go/speech"

	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// SileroDetector wraps github.com/streamer45/silero-vad-go/speech as a
// Detector: speech.NewDetector, detector.Detect, and Segment.SpeechStartAt/
// SpeechEndAt reported in seconds.
type SileroDetector struct {
	inner *speech.Detector
}

// SileroConfig mirrors the fields Policy needs out of the underlying
// model.
type SileroConfig struct {
	ModelPath       string
	Threshold       float32
	MinSilenceMs    int
	SpeechPadMs     int
}

func NewSileroDetector(cfg SileroConfig) (*SileroDetector, error) {
	if cfg.ModelPath == "" {
		return nil, scribbleerr.New(scribbleerr.InvalidInput, "vad model path required")
	}
	d, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            cfg.ModelPath,
		SampleRate:           16000,
		Threshold:            cfg.Threshold,
		MinSilenceDurationMs: cfg.MinSilenceMs,
		SpeechPadMs:          cfg.SpeechPadMs,
	})
	if err != nil {
		return nil, scribbleerr.Wrap(scribbleerr.InvalidInput, "create vad detector", err)
	}
	return &SileroDetector{inner: d}, nil
}

func (s *SileroDetector) Detect(samples []float32) ([]Segment, error) {
	segs, err := s.inner.Detect(samples)
	if err != nil {
		return nil, scribbleerr.Wrap(scribbleerr.Backend, "vad detect", err)
	}
	out := make([]Segment, len(segs))
	for i, seg := range segs {
		out[i] = Segment{SpeechStartAt: seg.SpeechStartAt, SpeechEndAt: seg.SpeechEndAt}
	}
	return out, nil
}

func (s *SileroDetector) Reset() error {
	s.inner.Reset()
	return nil
}

func (s *SileroDetector) Destroy() error {
	return s.inner.Destroy()
}

var _ Detector = (*SileroDetector)(nil)
