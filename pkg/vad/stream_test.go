package vad

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceReceiver struct {
	chunks [][]float32
	idx    int
}

func (s *sliceReceiver) Recv() ([]float32, error) {
	if s.idx >= len(s.chunks) {
		return nil, errors.New("disconnected")
	}
	c := s.chunks[s.idx]
	s.idx++
	return c, nil
}

func TestStream_SilenceOnlyYieldsZeroSegmentsWithDrop(t *testing.T) {
	rx := &sliceReceiver{chunks: [][]float32{make([]float32, windowFrames)}}
	detector := NewMockDetector() // reports no speech
	policy := DefaultPolicy()
	policy.DropSilentWindows = true

	s := NewStream(rx, detector, policy)
	_, err := s.Recv()
	require.Error(t, err) // nothing ever delivered; immediately disconnects after flush
}

func TestStream_PassesWholeWindowWhenHoldbackExceedsLength(t *testing.T) {
	rx := &sliceReceiver{chunks: [][]float32{make([]float32, windowFrames)}}
	detector := NewMockDetectorWithSegments([]Segment{{SpeechStartAt: 0, SpeechEndAt: 2}})
	policy := DefaultPolicy()
	policy.NonSpeechGain = 1.0
	policy.GapMergeMs = 2000 // holdback = 32000 samples, not shorter than the window

	s := NewStream(rx, detector, policy)
	chunk, err := s.Recv()
	require.NoError(t, err)
	assert.Len(t, chunk, windowFrames)
}

func TestStream_FlushOnDisconnectDeliversPendingTail(t *testing.T) {
	rx := &sliceReceiver{chunks: [][]float32{make([]float32, windowFrames)}}
	detector := NewMockDetectorWithSegments([]Segment{{SpeechStartAt: 0, SpeechEndAt: 2}})
	policy := DefaultPolicy()
	policy.NonSpeechGain = 1.0

	s := NewStream(rx, detector, policy)
	_, err := s.Recv()
	require.NoError(t, err)

	// Second call: upstream disconnects, flush runs over the pendingTail and
	// delivers it.
	chunk, err := s.Recv()
	require.NoError(t, err)
	assert.Len(t, chunk, policy.HoldbackFrames())

	// Third call: everything has been delivered.
	_, err = s.Recv()
	require.Error(t, err)
}
