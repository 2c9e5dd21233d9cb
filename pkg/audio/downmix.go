package audio

import "github.com/itsmontoya/scribble/pkg/scribbleerr"

// Downmix averages all channels of an interleaved PCM buffer into mono.
// Identity for mono input. Stereo [L1,R1,L2,R2,...] becomes
// [(L1+R1)/2, (L2+R2)/2, ...].
func Downmix(interleaved []float32, channels int, out []float32) ([]float32, error) {
	if channels <= 0 {
		return nil, scribbleerr.New(scribbleerr.InvalidInput, "zero-channel frame")
	}
	frames := len(interleaved) / channels
	if cap(out) < frames {
		out = make([]float32, frames)
	} else {
		out = out[:frames]
	}
	if channels == 1 {
		copy(out, interleaved[:frames])
		return out, nil
	}
	inv := 1.0 / float32(channels)
	for f := 0; f < frames; f++ {
		var sum float32
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += interleaved[base+c]
		}
		out[f] = sum * inv
	}
	return out, nil
}
