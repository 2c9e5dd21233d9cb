package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownmix_MonoIsIdentity(t *testing.T) {
	out, err := Downmix([]float32{0.1, -0.2, 0.3}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, out)
}

func TestDownmix_Stereo(t *testing.T) {
	out, err := Downmix([]float32{1.0, 3.0, -1.0, 1.0}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.0, 0.0}, out)
}

func TestDownmix_ZeroChannelsFails(t *testing.T) {
	_, err := Downmix([]float32{1, 2}, 0, nil)
	require.Error(t, err)
}

func TestPipeline_ChunkEarlyStop(t *testing.T) {
	p := NewPipeline()
	mono := make([]float32, 10)
	for i := range mono {
		mono[i] = float32(i)
	}

	var delivered [][]float32
	err := p.PushDecodedAndEmit(Frame{SampleRate: 16000, Channels: 1, Samples: mono}, 4, func(chunk []float32) bool {
		delivered = append(delivered, chunk)
		return false
	})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Len(t, delivered[0], 4)
}

func TestPipeline_PassthroughAt16kHz(t *testing.T) {
	p := NewPipeline()
	mono := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}

	var delivered []float32
	err := p.PushDecodedAndEmit(Frame{SampleRate: 16000, Channels: 1, Samples: mono}, 4, func(chunk []float32) bool {
		delivered = append(delivered, chunk...)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, mono, delivered)
}

func TestPipeline_FinalizeFlushesShortChunk(t *testing.T) {
	p := NewPipeline()
	mono := []float32{0.1, 0.2, 0.3, 0.4, 0.5}

	var delivered [][]float32
	emit := func(chunk []float32) bool {
		delivered = append(delivered, append([]float32(nil), chunk...))
		return true
	}
	require.NoError(t, p.PushDecodedAndEmit(Frame{SampleRate: 16000, Channels: 1, Samples: mono}, 4, emit))
	require.NoError(t, p.Finalize(4, emit))

	require.Len(t, delivered, 2)
	assert.Len(t, delivered[0], 4)
	assert.Len(t, delivered[1], 1)
}

func TestPipeline_ZeroChannelFrameFails(t *testing.T) {
	p := NewPipeline()
	err := p.PushDecodedAndEmit(Frame{SampleRate: 16000, Channels: 0, Samples: []float32{1}}, 4, func([]float32) bool { return true })
	require.Error(t, err)
}
