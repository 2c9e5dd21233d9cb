// Package decoder composes the demux/decode adapter and the audio pipeline
// into the streaming decode driver: probe, loop over
// packets, feed decoded frames to the pipeline, and drive a sink callback
// to completion or clean end-of-stream.
package decoder

import (
	"io"

	"github.com/asticode/go-astiav"

	"github.com/itsmontoya/scribble/pkg/audio"
	"github.com/itsmontoya/scribble/pkg/demux"
	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// Options configures a single decodeToStreamFromRead call.
type Options struct {
	TargetChunkFrames int
	HintExtension     string
}

// Sink receives normalized 16 kHz mono chunks. It returns false to stop
// delivery early (propagated from the audio pipeline's emit contract).
type Sink func(chunk []float32) bool

// DecodeToStreamFromRead takes a Read-only, move-only source (no
// seekability required), probes it, decodes the selected audio track
// packet by packet, and drives sink with normalized chunks until the
// stream ends or sink asks to stop.
func DecodeToStreamFromRead(reader io.Reader, opts Options, sink Sink) error {
	track, err := demux.Open(reader, opts.HintExtension)
	if err != nil {
		return err
	}
	defer track.Close()

	pipeline := audio.NewPipeline()
	stopped := false

	onDecoded := func(frame *astiav.Frame) error {
		samples, channels, err := interleavedFloat32(frame)
		if err != nil {
			return err
		}
		return pipeline.PushDecodedAndEmit(audio.Frame{
			SampleRate: track.SampleRate,
			Channels:   channels,
			Samples:    samples,
		}, opts.TargetChunkFrames, func(chunk []float32) bool {
			if stopped {
				return false
			}
			if !sink(chunk) {
				stopped = true
				return false
			}
			return true
		})
	}

	for !stopped {
		packet, err := track.NextPacket()
		if err != nil {
			return err
		}
		if packet == nil {
			break // clean end-of-stream
		}
		if _, err := track.DecodePacketAndThen(packet, onDecoded); err != nil {
			return err
		}
	}

	if stopped {
		return nil
	}
	return pipeline.Finalize(opts.TargetChunkFrames, func(chunk []float32) bool {
		return sink(chunk)
	})
}

// interleavedFloat32 converts an astiav decoded audio frame (assumed
// planar or packed float/int PCM, as produced by the selected codec) into
// an interleaved float32 buffer plus its channel count.
func interleavedFloat32(frame *astiav.Frame) ([]float32, int, error) {
	channels := frame.ChannelLayout().Channels()
	if channels <= 0 {
		return nil, 0, scribbleerr.New(scribbleerr.InvalidInput, "zero-channel decoded frame")
	}

	samples, err := frame.AudioSamplesInterleavedFloat32()
	if err != nil {
		return nil, 0, scribbleerr.Wrap(scribbleerr.Decode, "extract samples from decoded frame", err)
	}
	return samples, channels, nil
}
