// Package incremental converts a growing stream of 16 kHz mono chunks into
// a stream of finalized segments, running the bound inference function
// only when growth thresholds are met and applying exponential backoff
// when a pass makes no progress.
package incremental

import (
	"github.com/itsmontoya/scribble/pkg/scribbleerr"
	"github.com/itsmontoya/scribble/pkg/segments"
	"github.com/itsmontoya/scribble/pkg/token"
)

const (
	sampleRate       = 16000
	maxWindowSeconds = 30
	maxBackoffShift  = 4
	compactThreshold = 16000
)

// RawSegment is what an inference pass over the live window reports, before
// the incremental offset is applied. EndTimestampCentiseconds is the
// backend's own segment-end time (the unit whisper.cpp and similar engines
// report in) and drives how far the window advances; it is independent of
// the possibly token-refined (StartSeconds, EndSeconds) used for display.
type RawSegment struct {
	StartSeconds             float32
	EndSeconds               float32
	EndTimestampCentiseconds int
	Text                     string
	Tokens                   []token.Token
	LanguageCode             string
	NextSpeakerTurn          bool
}

// InferFunc runs the backend over the live window and returns zero or more
// segments in arrival order.
type InferFunc func(window []float32) ([]RawSegment, error)

// Transcriber holds the incremental state machine: samples/head/
// advancedSamples bookkeeping, the growth thresholds, and the backoff
// counter.
type Transcriber struct {
	infer   InferFunc
	encoder segments.Encoder

	languageHint       string
	emitSingleSegments bool

	minWindowSamples int
	maxWindowSamples int

	samples            []float32
	head               int
	advancedSamples    int
	nextInferAtSamples int
	noProgressRuns     int
}

// New builds a Transcriber. minWindowSeconds is the minimum buffered
// duration before the first inference pass (Opts.incrementalMinWindowSeconds).
func New(infer InferFunc, encoder segments.Encoder, minWindowSeconds uint, emitSingleSegments bool, languageHint string) *Transcriber {
	minWindowSamples := int(minWindowSeconds) * sampleRate
	return &Transcriber{
		infer:              infer,
		encoder:            encoder,
		languageHint:       languageHint,
		emitSingleSegments: emitSingleSegments,
		minWindowSamples:   minWindowSamples,
		maxWindowSamples:   maxWindowSeconds * sampleRate,
		nextInferAtSamples: minWindowSamples,
	}
}

// OnSamples appends chunk to the live buffer and runs one non-flushing
// processing step.
func (t *Transcriber) OnSamples(chunk []float32) error {
	t.samples = append(t.samples, chunk...)
	_, err := t.step(false)
	return err
}

// Finish runs the flushing processing step repeatedly until it reports no
// further progress, draining any remaining buffered audio.
func (t *Transcriber) Finish() error {
	for {
		advanced, err := t.step(true)
		if err != nil {
			return err
		}
		if !advanced {
			return nil
		}
	}
}

// step runs one growing-window inference pass and advances the buffer.
func (t *Transcriber) step(endOfStream bool) (advanced bool, err error) {
	winLen := len(t.samples) - t.head
	if winLen == 0 {
		return false, nil
	}
	if !endOfStream && winLen < t.minWindowSamples {
		return false, nil
	}
	forceFlush := endOfStream || winLen >= t.maxWindowSamples
	if !forceFlush && winLen < t.nextInferAtSamples {
		return false, nil
	}

	window := t.samples[t.head:]
	raw, err := t.infer(window)
	if err != nil {
		return false, scribbleerr.Wrap(scribbleerr.Backend, "run backend over live window", err)
	}

	n := len(raw)
	if n == 0 {
		t.backoff(winLen)
		return false, nil
	}

	var emitCount int
	switch {
	case forceFlush || t.emitSingleSegments:
		emitCount = n
	case n >= 2:
		emitCount = n - 1 // last segment of a multi-segment batch is tentative
	default:
		emitCount = 0
	}

	if emitCount == 0 {
		t.backoff(winLen)
		return false, nil
	}

	offsetSeconds := float32(t.advancedSamples) / sampleRate
	var lastEndCentis int
	for i := 0; i < emitCount; i++ {
		seg := t.toSegment(raw[i], offsetSeconds)
		if err := t.encoder.WriteSegment(seg); err != nil {
			return false, scribbleerr.Wrap(scribbleerr.Other, "write segment", err)
		}
		lastEndCentis = raw[i].EndTimestampCentiseconds
	}

	endSamples := centisecondsToSamples(lastEndCentis)
	if endSamples < 1 {
		endSamples = 1
	}
	if endSamples > winLen {
		endSamples = winLen
	}
	t.head += endSamples
	t.advancedSamples += endSamples

	if t.head >= compactThreshold || t.head >= len(t.samples)/2 {
		remaining := len(t.samples) - t.head
		copy(t.samples, t.samples[t.head:])
		t.samples = t.samples[:remaining]
		t.head = 0
	}

	t.noProgressRuns = 0
	if endOfStream {
		t.nextInferAtSamples = t.minWindowSamples
	} else {
		t.nextInferAtSamples = (len(t.samples) - t.head) + t.minWindowSamples
	}
	return true, nil
}

// backoff applies the exponential no-progress backoff:
// nextInferAtSamples = min(maxWindowSamples, winLen + minWindowSamples*2^min(runs-1,4)).
func (t *Transcriber) backoff(winLen int) {
	t.noProgressRuns++
	shift := t.noProgressRuns - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	next := winLen + t.minWindowSamples*(1<<uint(shift))
	if next > t.maxWindowSamples {
		next = t.maxWindowSamples
	}
	t.nextInferAtSamples = next
}

func (t *Transcriber) toSegment(raw RawSegment, offsetSeconds float32) segments.Segment {
	start, end := raw.StartSeconds, raw.EndSeconds
	if refStart, refEnd, ok := token.RefineTiming(raw.Tokens); ok {
		start, end = refStart, refEnd
	}

	lang := raw.LanguageCode
	if lang == "" {
		lang = t.languageHint
	}
	if lang == "" {
		lang = "und"
	}

	offsetTokens := make([]token.Token, len(raw.Tokens))
	for i, tk := range raw.Tokens {
		tk.StartSeconds += offsetSeconds
		tk.EndSeconds += offsetSeconds
		offsetTokens[i] = tk
	}

	return segments.Segment{
		StartSeconds:    start + offsetSeconds,
		EndSeconds:      end + offsetSeconds,
		Text:            raw.Text,
		Tokens:          offsetTokens,
		LanguageCode:    lang,
		NextSpeakerTurn: raw.NextSpeakerTurn,
	}
}

func centisecondsToSamples(centis int) int {
	return centis * sampleRate / 100
}
