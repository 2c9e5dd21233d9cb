package audio

import (
	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// sincResampler adapts github.com/tphakala/go-audio-resampler's fixed-input
// block sinc resampler to mono 16 kHz output: sinc length 256, cutoff
// 0.95, linear interpolation, oversampling 256, Blackman-Harris-2 window,
// input block 2048, one channel.
type sincResampler struct {
	inner   *resampler.SincFixedIn
	inMax   int
	ratio   float64
	inChan  [][]float32
	outChan [][]float32
}

const (
	sincLength       = 256
	sincCutoff       = 0.95
	sincOversampling = 256
	resamplerInMax   = 2048
)

// newSincResampler constructs a resampler for converting from srcRate to
// 16 kHz mono. Only called on the slow path (srcRate != 16000); construct
// at most once per transcription.
func newSincResampler(srcRate int) (*sincResampler, error) {
	ratio := 16000.0 / float64(srcRate)
	params := resampler.SincInterpolationParameters{
		SincLen:      sincLength,
		F_cutoff:     sincCutoff,
		Interpolation: resampler.InterpolationLinear,
		Oversampling: sincOversampling,
		Window:       resampler.WindowBlackmanHarris2,
	}
	inner, err := resampler.NewSincFixedIn(ratio, 1.0, params, resamplerInMax, 1)
	if err != nil {
		return nil, scribbleerr.Wrap(scribbleerr.Decode, "construct resampler", err)
	}
	return &sincResampler{
		inner:   inner,
		inMax:   resamplerInMax,
		ratio:   ratio,
		inChan:  [][]float32{make([]float32, resamplerInMax)},
		outChan: [][]float32{nil},
	}, nil
}

// InputBlockSize returns the exact number of mono samples the resampler
// consumes per Process call.
func (r *sincResampler) InputBlockSize() int { return r.inMax }

// Process resamples exactly InputBlockSize() mono samples and returns the
// resampled output (length varies call to call by design of the sinc
// resampler's adaptive output sizing).
func (r *sincResampler) Process(block []float32) ([]float32, error) {
	if len(block) != r.inMax {
		return nil, scribbleerr.New(scribbleerr.Decode, "resampler block size mismatch")
	}
	copy(r.inChan[0], block)
	out, err := r.inner.Process(r.inChan, -1)
	if err != nil {
		return nil, scribbleerr.Wrap(scribbleerr.Decode, "resample process", err)
	}
	return out[0], nil
}
