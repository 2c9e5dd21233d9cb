package vad

import (
	"math"
	"sort"
)

// Policy controls how raw speech segments reported by a Detector are
// turned into sample ranges and how non-speech audio is treated.
type Policy struct {
	Threshold     float32
	PrePadMs      int
	PostPadMs     int
	MinSpeechMs   int
	GapMergeMs    int
	NonSpeechGain float32

	// DropSilentWindows implements the alternative muting policy: when
	// NonSpeechGain is 0 and a window contains no speech at all, drop the
	// whole window instead of emitting silence.
	DropSilentWindows bool
}

// DefaultPolicy returns the documented defaults.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:     0.5,
		PrePadMs:      250,
		PostPadMs:     250,
		MinSpeechMs:   250,
		GapMergeMs:    300,
		NonSpeechGain: 0,
	}
}

const sampleRate = 16000

func msToSamples(ms int) int {
	return ms * sampleRate / 1000
}

// HoldbackFrames returns WINDOW_FRAMES' trailing-carry size: msToSamples(max(prePadMs, postPadMs, gapMergeMs)).
func (p Policy) HoldbackFrames() int {
	m := p.PrePadMs
	if p.PostPadMs > m {
		m = p.PostPadMs
	}
	if p.GapMergeMs > m {
		m = p.GapMergeMs
	}
	return msToSamples(m)
}

// Range is a half-open [Start, End) sample interval classified as speech
// after policy-driven filtering, padding, and merging.
type Range struct {
	Start int
	End   int
}

// ExtractRanges converts raw detector segments (seconds) into policy-applied
// sample ranges clamped to [0, windowLen): filter by MinSpeechMs, pad by
// PrePadMs/PostPadMs, merge ranges whose gap is <= GapMergeMs. Start is
// floored, End is ceiled, and no range is ever emitted inverted.
func (p Policy) ExtractRanges(segments []Segment, windowLen int) []Range {
	prePad := msToSamples(p.PrePadMs)
	postPad := msToSamples(p.PostPadMs)
	minSpeech := msToSamples(p.MinSpeechMs)
	gapMerge := msToSamples(p.GapMergeMs)

	ranges := make([]Range, 0, len(segments))
	for _, seg := range segments {
		start := int(math.Floor(seg.SpeechStartAt * sampleRate))
		end := int(math.Ceil(seg.SpeechEndAt * sampleRate))
		if end <= start {
			continue
		}
		if end-start < minSpeech {
			continue
		}
		start -= prePad
		end += postPad
		if start < 0 {
			start = 0
		}
		if end > windowLen {
			end = windowLen
		}
		if start >= end {
			continue
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })

	merged := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if len(merged) > 0 && r.Start-merged[len(merged)-1].End <= gapMerge {
			if r.End > merged[len(merged)-1].End {
				merged[len(merged)-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// ApplyGain scales every sample outside ranges by gain, in place, and
// returns window. Gain == 1.0 is a no-op; gain == 0.0 uses a memset-zero
// fast path for the attenuated spans.
func ApplyGain(window []float32, ranges []Range, gain float32) []float32 {
	if gain == 1.0 {
		return window
	}
	cursor := 0
	scale := func(from, to int) {
		if from >= to {
			return
		}
		if gain == 0 {
			for i := from; i < to; i++ {
				window[i] = 0
			}
			return
		}
		for i := from; i < to; i++ {
			window[i] *= gain
		}
	}
	for _, r := range ranges {
		scale(cursor, r.Start)
		cursor = r.End
	}
	scale(cursor, len(window))
	return window
}

// HasSpeech reports whether ranges contains at least one non-empty range.
func HasSpeech(ranges []Range) bool {
	for _, r := range ranges {
		if r.End > r.Start {
			return true
		}
	}
	return false
}
