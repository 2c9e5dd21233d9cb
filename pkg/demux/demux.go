// Package demux implements the container probe / track selection / packet
// decode adapter on top of github.com/asticode/go-astiav
// (ffmpeg bindings). I/O errors surfacing from ReadFrame are treated as a
// clean end-of-stream; only demux-level errors propagate.
package demux

import (
	"errors"
	"io"

	"github.com/asticode/go-astiav"

	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// Track is the probed, selected audio track plus its decode context.
type Track struct {
	formatCtx  *astiav.FormatContext
	ioCtx      *readerIOContext
	stream     *astiav.Stream
	codecCtx   *astiav.CodecContext
	packet     *astiav.Packet
	frame      *astiav.Frame
	streamIdx  int
	SampleRate int
	Channels   int
}

// Open probes src (via a custom IO context, since the input is a plain
// io.Reader with no seek guarantee), selects the first audio stream with a
// known sample rate, and returns a ready-to-decode Track. hintExtension
// improves probing on ambiguous streams.
func Open(src io.Reader, hintExtension string) (*Track, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, scribbleerr.New(scribbleerr.Decode, "allocate format context")
	}

	ioCtx, err := newReaderIOContext(src)
	if err != nil {
		fc.Free()
		return nil, scribbleerr.Wrap(scribbleerr.Io, "wrap reader as io context", err)
	}
	fc.SetPb(ioCtx.AVIOContext())

	opts := astiav.NewDictionary()
	defer opts.Free()
	if hintExtension != "" {
		_ = opts.Set("format_whitelist", hintExtension, 0)
	}

	if err := fc.OpenInput("", nil, opts); err != nil {
		fc.Free()
		return nil, scribbleerr.Wrap(scribbleerr.Decode, "probe container", err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, scribbleerr.Wrap(scribbleerr.Decode, "find stream info", err)
	}

	streamIdx := -1
	var stream *astiav.Stream
	for i, s := range fc.Streams() {
		params := s.CodecParameters()
		if params.MediaType() != astiav.MediaTypeAudio {
			continue
		}
		if params.SampleRate() <= 0 {
			continue
		}
		streamIdx = i
		stream = s
		break
	}
	if streamIdx < 0 {
		fc.CloseInput()
		fc.Free()
		return nil, scribbleerr.New(scribbleerr.InvalidInput, "no usable audio track")
	}

	params := stream.CodecParameters()
	codec := astiav.FindDecoder(params.CodecID())
	if codec == nil {
		fc.CloseInput()
		fc.Free()
		return nil, scribbleerr.New(scribbleerr.Decode, "no decoder for codec")
	}
	codecCtx := astiav.AllocCodecContext(codec)
	if codecCtx == nil {
		fc.CloseInput()
		fc.Free()
		return nil, scribbleerr.New(scribbleerr.Decode, "allocate codec context")
	}
	if err := params.ToCodecContext(codecCtx); err != nil {
		codecCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, scribbleerr.Wrap(scribbleerr.Decode, "apply codec parameters", err)
	}
	if err := codecCtx.Open(codec, nil); err != nil {
		codecCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, scribbleerr.Wrap(scribbleerr.Decode, "open codec", err)
	}

	return &Track{
		formatCtx:  fc,
		ioCtx:      ioCtx,
		stream:     stream,
		codecCtx:   codecCtx,
		packet:     astiav.AllocPacket(),
		frame:      astiav.AllocFrame(),
		streamIdx:  streamIdx,
		SampleRate: params.SampleRate(),
		Channels:   params.ChannelLayout().Channels(),
	}, nil
}

// Close releases all ffmpeg resources. Safe to call once after Open.
func (t *Track) Close() {
	t.frame.Free()
	t.packet.Free()
	t.codecCtx.Free()
	t.formatCtx.CloseInput()
	t.formatCtx.Free()
	t.ioCtx.Free()
}

// NextPacket reads the next packet belonging to the selected track,
// skipping packets from other tracks. Underlying I/O errors (including
// io.EOF) are treated as clean end-of-stream: it returns (nil, nil).
// Only demux-level failures are returned as errors.
func (t *Track) NextPacket() (*astiav.Packet, error) {
	for {
		err := t.formatCtx.ReadFrame(t.packet)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, astiav.ErrEof) {
				return nil, nil
			}
			return nil, scribbleerr.Wrap(scribbleerr.Decode, "read packet", err)
		}
		if t.packet.StreamIndex() != t.streamIdx {
			t.packet.Unref()
			continue
		}
		return t.packet, nil
	}
}

// DecodePacketAndThen decodes packet, invoking onDecoded once per decoded
// frame. It returns (true, nil) on a successful decode pass, (false, nil)
// on a recoverable condition (EAGAIN, end-of-stream), and a non-nil error
// only on a fatal decoder failure — so the caller can continue past a
// single bad frame.
func (t *Track) DecodePacketAndThen(packet *astiav.Packet, onDecoded func(frame *astiav.Frame) error) (bool, error) {
	if err := t.codecCtx.SendPacket(packet); err != nil {
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			return false, nil
		}
		return false, scribbleerr.Wrap(scribbleerr.Decode, "send packet", err)
	}

	decodedAny := false
	for {
		err := t.codecCtx.ReceiveFrame(t.frame)
		if err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				break
			}
			return false, scribbleerr.Wrap(scribbleerr.Decode, "receive frame", err)
		}
		if err := onDecoded(t.frame); err != nil {
			return false, err
		}
		decodedAny = true
	}
	return decodedAny, nil
}
