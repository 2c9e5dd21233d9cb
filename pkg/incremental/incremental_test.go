package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmontoya/scribble/pkg/segments"
)

type recordingEncoder struct {
	segs   []segments.Segment
	closed bool
}

func (r *recordingEncoder) WriteSegment(seg segments.Segment) error {
	r.segs = append(r.segs, seg)
	return nil
}

func (r *recordingEncoder) Close() error {
	r.closed = true
	return nil
}

func TestTranscriber_IncrementalOffset(t *testing.T) {
	call := 0
	infer := func(window []float32) ([]RawSegment, error) {
		call++
		switch call {
		case 1:
			return []RawSegment{{StartSeconds: 0.0, EndSeconds: 1.2, EndTimestampCentiseconds: 120, Text: "hello"}}, nil
		case 2:
			return []RawSegment{{StartSeconds: 0.0, EndSeconds: 0.8, EndTimestampCentiseconds: 80, Text: "world"}}, nil
		default:
			return nil, nil
		}
	}

	enc := &recordingEncoder{}
	tr := New(infer, enc, 0, true, "")

	require.NoError(t, tr.OnSamples(make([]float32, 19200))) // 1.2s
	require.NoError(t, tr.OnSamples(make([]float32, 16000))) // 1.0s more

	require.Len(t, enc.segs, 2)
	assert.InDelta(t, 0.0, enc.segs[0].StartSeconds, 1e-4)
	assert.InDelta(t, 1.2, enc.segs[0].EndSeconds, 1e-4)
	assert.Equal(t, "hello", enc.segs[0].Text)

	assert.InDelta(t, 1.2, enc.segs[1].StartSeconds, 1e-4)
	assert.InDelta(t, 2.0, enc.segs[1].EndSeconds, 1e-4)
	assert.Equal(t, "world", enc.segs[1].Text)
}

func TestTranscriber_NoProgressBacksOff(t *testing.T) {
	infer := func(window []float32) ([]RawSegment, error) { return nil, nil }
	enc := &recordingEncoder{}
	tr := New(infer, enc, 1, false, "")

	require.NoError(t, tr.OnSamples(make([]float32, 16000)))
	assert.Equal(t, 1, tr.noProgressRuns)
	first := tr.nextInferAtSamples

	require.NoError(t, tr.OnSamples(nil))
	assert.Empty(t, enc.segs)
	assert.GreaterOrEqual(t, tr.nextInferAtSamples, first)
}

func TestTranscriber_LastSegmentTentativeUnlessFlush(t *testing.T) {
	infer := func(window []float32) ([]RawSegment, error) {
		return []RawSegment{
			{StartSeconds: 0, EndSeconds: 0.5, EndTimestampCentiseconds: 50, Text: "a"},
			{StartSeconds: 0.5, EndSeconds: 1.0, EndTimestampCentiseconds: 100, Text: "b"},
		}, nil
	}
	enc := &recordingEncoder{}
	tr := New(infer, enc, 0, false, "")

	require.NoError(t, tr.OnSamples(make([]float32, 16000)))
	require.Len(t, enc.segs, 1)
	assert.Equal(t, "a", enc.segs[0].Text)
}

func TestTranscriber_FinishEmitsTentativeSegment(t *testing.T) {
	calls := 0
	infer := func(window []float32) ([]RawSegment, error) {
		calls++
		if calls == 1 {
			return []RawSegment{
				{StartSeconds: 0, EndSeconds: 0.5, EndTimestampCentiseconds: 50, Text: "a"},
				{StartSeconds: 0.5, EndSeconds: 1.0, EndTimestampCentiseconds: 100, Text: "b"},
			}, nil
		}
		// Re-run on the shrunk window (everything past "a"): on finish this
		// is a forced flush, so the single remaining segment is emitted.
		return []RawSegment{{StartSeconds: 0, EndSeconds: 0.5, EndTimestampCentiseconds: 50, Text: "b"}}, nil
	}
	enc := &recordingEncoder{}
	tr := New(infer, enc, 0, false, "")

	require.NoError(t, tr.OnSamples(make([]float32, 16000)))
	require.Len(t, enc.segs, 1)

	require.NoError(t, tr.Finish())
	require.Len(t, enc.segs, 2)
	assert.Equal(t, "b", enc.segs[1].Text)
}
