package vad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRanges_FiltersShortAndPads(t *testing.T) {
	p := DefaultPolicy()
	segs := []Segment{{SpeechStartAt: 1.0, SpeechEndAt: 1.5}}
	ranges := p.ExtractRanges(segs, 32000)
	if assert.Len(t, ranges, 1) {
		prePad := msToSamples(p.PrePadMs)
		postPad := msToSamples(p.PostPadMs)
		assert.Equal(t, 16000-prePad, ranges[0].Start)
		assert.Equal(t, 24000+postPad, ranges[0].End)
	}
}

func TestExtractRanges_DropsBelowMinSpeech(t *testing.T) {
	p := DefaultPolicy()
	segs := []Segment{{SpeechStartAt: 1.0, SpeechEndAt: 1.05}} // 800 samples < 250ms=4000 samples
	ranges := p.ExtractRanges(segs, 32000)
	assert.Empty(t, ranges)
}

func TestExtractRanges_MergesAdjacent(t *testing.T) {
	p := DefaultPolicy()
	p.PrePadMs, p.PostPadMs = 0, 0
	segs := []Segment{
		{SpeechStartAt: 1.0, SpeechEndAt: 1.3},
		{SpeechStartAt: 1.31, SpeechEndAt: 1.6}, // gap well under 300ms
	}
	ranges := p.ExtractRanges(segs, 32000)
	assert.Len(t, ranges, 1)
}

func TestApplyGain_ZeroIsMemsetFastPath(t *testing.T) {
	window := []float32{1, 1, 1, 1, 1, 1}
	ranges := []Range{{Start: 2, End: 4}}
	out := ApplyGain(window, ranges, 0)
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 0}, out)
}

func TestApplyGain_OneIsNoop(t *testing.T) {
	window := []float32{1, 2, 3}
	out := ApplyGain(window, nil, 1.0)
	assert.Equal(t, []float32{1, 2, 3}, out)
}

func TestHasSpeech(t *testing.T) {
	assert.False(t, HasSpeech(nil))
	assert.True(t, HasSpeech([]Range{{Start: 0, End: 5}}))
}
