// Package audio implements the PCM normalization stage of the scribble
// pipeline: downmix to mono, resample to 16 kHz, and slice the result into
// fixed-size chunks for downstream delivery.
package audio

import "github.com/itsmontoya/scribble/pkg/scribbleerr"

// Frame is one decoded PCM frame handed to the pipeline by the demux/decode
// adapter: interleaved samples at the frame's own source rate and channel
// count.
type Frame struct {
	SampleRate int
	Channels   int
	Samples    []float32 // interleaved
}

// Pipeline owns the per-transcription PCM-normalization state: a reusable
// downmix scratch buffer, a lazily-constructed resampler (only when the
// source rate differs from 16 kHz), a source-rate mono accumulator holding
// up to inMax-1 samples between calls, and a resampled-output buffer that
// chunk emission slices from.
type Pipeline struct {
	resampler *sincResampler
	scratch   []float32
	monoAcc   []float32
	outBuf    []float32
}

// NewPipeline returns an empty pipeline. The resampler is constructed on
// the first frame whose sample rate differs from 16 kHz.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// PushDecodedAndEmit accepts one decoded frame, downmixes and (if needed)
// resamples it, and emits zero or more targetChunkFrames-sized mono chunks
// via emit. emit returning false stops further emission for this call
// (early-stop semantics); it does not affect later calls.
func (p *Pipeline) PushDecodedAndEmit(frame Frame, targetChunkFrames int, emit func([]float32) bool) error {
	if frame.Channels <= 0 {
		return scribbleerr.New(scribbleerr.InvalidInput, "zero-channel frame")
	}
	mono, err := Downmix(frame.Samples, frame.Channels, p.scratch)
	if err != nil {
		return err
	}
	p.scratch = mono

	if frame.SampleRate == 16000 {
		p.outBuf = append(p.outBuf, mono...)
	} else {
		if p.resampler == nil {
			r, err := newSincResampler(frame.SampleRate)
			if err != nil {
				return err
			}
			p.resampler = r
		}
		p.monoAcc = append(p.monoAcc, mono...)
		if err := p.drainResamplerBlocks(); err != nil {
			return err
		}
	}

	p.emitFullChunks(targetChunkFrames, emit)
	return nil
}

// drainResamplerBlocks feeds the resampler one inMax-sized block at a time
// for as long as the accumulator holds a full block.
func (p *Pipeline) drainResamplerBlocks() error {
	inMax := p.resampler.InputBlockSize()
	for len(p.monoAcc) >= inMax {
		out, err := p.resampler.Process(p.monoAcc[:inMax])
		if err != nil {
			return err
		}
		p.outBuf = append(p.outBuf, out...)
		remaining := len(p.monoAcc) - inMax
		copy(p.monoAcc, p.monoAcc[inMax:])
		p.monoAcc = p.monoAcc[:remaining]
	}
	return nil
}

// emitFullChunks slices targetChunkFrames-sized pieces off outBuf and hands
// each to emit until fewer than a full chunk remains or emit returns false.
func (p *Pipeline) emitFullChunks(targetChunkFrames int, emit func([]float32) bool) {
	for len(p.outBuf) >= targetChunkFrames {
		chunk := make([]float32, targetChunkFrames)
		copy(chunk, p.outBuf[:targetChunkFrames])
		remaining := len(p.outBuf) - targetChunkFrames
		copy(p.outBuf, p.outBuf[targetChunkFrames:])
		p.outBuf = p.outBuf[:remaining]
		if !emit(chunk) {
			return
		}
	}
}

// Finalize flushes any buffered resampler input at end-of-stream: the
// residual (necessarily shorter than one input block) is zero-padded to a
// full block and drained, then any remaining output — possibly a short
// final chunk — is emitted.
func (p *Pipeline) Finalize(targetChunkFrames int, emit func([]float32) bool) error {
	if p.resampler != nil && len(p.monoAcc) > 0 {
		inMax := p.resampler.InputBlockSize()
		block := make([]float32, inMax)
		copy(block, p.monoAcc)
		out, err := p.resampler.Process(block)
		if err != nil {
			return err
		}
		p.outBuf = append(p.outBuf, out...)
		p.monoAcc = p.monoAcc[:0]
	}

	p.emitFullChunks(targetChunkFrames, emit)

	if len(p.outBuf) > 0 {
		chunk := make([]float32, len(p.outBuf))
		copy(chunk, p.outBuf)
		p.outBuf = p.outBuf[:0]
		emit(chunk)
	}
	return nil
}
