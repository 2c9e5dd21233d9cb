// Package scribble wires the decoder thread, sample transport, optional
// VAD filter, backend stream, and segment encoder into the single
// `transcribe` entry point.
package scribble

import (
	"bufio"
	"fmt"
	"io"

	"github.com/itsmontoya/scribble/pkg/backend"
	"github.com/itsmontoya/scribble/pkg/decoder"
	"github.com/itsmontoya/scribble/pkg/scribbleerr"
	"github.com/itsmontoya/scribble/pkg/segments"
	"github.com/itsmontoya/scribble/pkg/transport"
	"github.com/itsmontoya/scribble/pkg/vad"
)

// OutputType selects the segment encoding.
type OutputType int

const (
	OutputJSON OutputType = iota
	OutputVTT
)

func (t OutputType) newEncoder(w io.Writer) segments.Encoder {
	if t == OutputVTT {
		return segments.NewVTTEncoder(w)
	}
	return segments.NewJSONArrayEncoder(w)
}

// defaultTargetChunkFrames is the audio-pipeline chunk size fed into the
// transport.
const defaultTargetChunkFrames = 1024

// Opts is the library-wide configuration record.
type Opts struct {
	ModelKey                     string
	EnableTranslateToEnglish     bool
	EnableVoiceActivityDetection bool
	Language                     string
	OutputType                   OutputType
	IncrementalMinWindowSeconds  uint
	EmitSingleSegments           bool
	VadPolicy                    *vad.Policy

	// VadDetector must be set when EnableVoiceActivityDetection is true;
	// the neural model stays an external black box the caller constructs
	// (e.g. vad.NewSileroDetector) and owns the lifecycle of.
	VadDetector vad.Detector

	// HintExtension improves container probing on ambiguous streams.
	HintExtension string
}

// Transcribe is the orchestrator's entry point: spawn a
// decoder thread over reader, optionally interpose VAD, drive be's stream
// with delivered chunks, and encode finalized segments to writer.
func Transcribe(reader io.Reader, writer io.Writer, opts Opts, be backend.Backend) error {
	bufWriter := bufio.NewWriter(writer)
	encoder := opts.OutputType.newEncoder(bufWriter)

	if opts.EnableVoiceActivityDetection && opts.VadDetector == nil {
		_ = encoder.Close()
		return scribbleerr.New(scribbleerr.InvalidInput, "voice activity detection enabled without a configured detector")
	}

	sender, receiver := transport.NewChannel()

	decoderDone := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				sender.Close() // skipped by the panic; lets the consumer loop end
				decoderDone <- scribbleerr.New(scribbleerr.Other, fmt.Sprintf("decoder thread panicked: %v", r))
			}
		}()
		decodeErr := decoder.DecodeToStreamFromRead(reader, decoder.Options{
			TargetChunkFrames: defaultTargetChunkFrames,
			HintExtension:     opts.HintExtension,
		}, sender.OnSamples)
		sender.Close()
		decoderDone <- decodeErr
	}()

	var rx transport.SamplesRx = receiver
	if opts.EnableVoiceActivityDetection {
		policy := vad.DefaultPolicy()
		if opts.VadPolicy != nil {
			policy = *opts.VadPolicy
		}
		rx = vad.NewStream(receiver, opts.VadDetector, policy)
	}

	stream, err := be.CreateStream(backend.Opts{
		ModelKey:                    opts.ModelKey,
		EnableTranslateToEnglish:    opts.EnableTranslateToEnglish,
		Language:                    opts.Language,
		IncrementalMinWindowSeconds: opts.IncrementalMinWindowSeconds,
		EmitSingleSegments:          opts.EmitSingleSegments,
	}, encoder)
	if err != nil {
		receiver.Close() // nothing will ever drain the transport; unblock the producer
		<-decoderDone
		_ = encoder.Close()
		return scribbleerr.Wrap(scribbleerr.Backend, "create backend stream", err)
	}

	var runErr error
	for {
		chunk, rerr := rx.Recv()
		if rerr != nil {
			break // disconnect: clean end of transport, not a failure
		}
		if serr := stream.OnSamples(chunk); serr != nil {
			runErr = serr
			break
		}
	}
	// The loop above may have stopped early (error, or rx.Recv() itself
	// failing) while the producer is still mid-send on a full channel;
	// close releases it so the decoder goroutine observes OnSamples
	// returning false, finishes, and sender.Close() lets decoderDone fire.
	receiver.Close()

	finishErr := stream.Finish()
	// run (step 5) precedes finish (step 6) in the shutdown sequence, so a
	// run failure stays primary and a finish failure becomes its context.
	inferenceErr := scribbleerr.Merge(runErr, finishErr)

	decoderErr := <-decoderDone
	// inference (steps 5-6) precedes the join (step 7): report the
	// inference failure with the decoder error attached as context.
	result := scribbleerr.Merge(inferenceErr, decoderErr)

	closeErr := encoder.Close()
	return scribbleerr.Merge(result, closeErr)
}
