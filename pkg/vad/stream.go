package vad

import "github.com/itsmontoya/scribble/pkg/scribbleerr"

// windowFrames is a 2 s analysis window at 16 kHz.
const windowFrames = 2 * sampleRate

// Receiver is the minimal upstream contract Stream needs — satisfied by
// both transport.Receiver and another Stream, so VAD can in principle be
// chained, though scribble only ever wraps the plain transport receiver.
type Receiver interface {
	Recv() ([]float32, error)
}

// Stream is the streaming adapter between sample transport and the backend
// stream. It buffers audio into windowFrames analysis windows, runs the
// detector, applies the policy, and exposes the result through the same
// Recv() contract as the plain transport receiver.
type Stream struct {
	rx       Receiver
	detector Detector
	policy   Policy

	pendingTail []float32
	inBuf       []float32
	outBuf      []float32
	outCursor   int
	upstreamEOS bool
}

// NewStream wraps rx with VAD filtering per policy.
func NewStream(rx Receiver, detector Detector, policy Policy) *Stream {
	return &Stream{rx: rx, detector: detector, policy: policy}
}

// Recv returns the next VAD-filtered chunk, or the disconnect error once
// upstream has ended and all buffered output has been delivered.
func (s *Stream) Recv() ([]float32, error) {
	for {
		if s.outCursor < len(s.outBuf) {
			out := s.outBuf[s.outCursor:]
			s.outBuf = nil
			s.outCursor = 0
			return out, nil
		}
		if s.upstreamEOS {
			return nil, scribbleerr.New(scribbleerr.Io, "vad stream disconnected")
		}

		chunk, err := s.rx.Recv()
		if err != nil {
			s.upstreamEOS = true
			if ferr := s.flush(); ferr != nil {
				return nil, ferr
			}
			continue
		}
		s.inBuf = append(s.inBuf, chunk...)
		for len(s.inBuf) >= windowFrames {
			if perr := s.processWindow(); perr != nil {
				return nil, perr
			}
		}
	}
}

// processWindow drains exactly windowFrames samples from inBuf, analyzes
// pendingTail++segment, applies the policy, and splits the result at
// len-HoldbackFrames between outBuf (delivered now) and pendingTail
// (carried into the next window).
func (s *Stream) processWindow() error {
	segment := make([]float32, windowFrames)
	copy(segment, s.inBuf[:windowFrames])
	remaining := len(s.inBuf) - windowFrames
	copy(s.inBuf, s.inBuf[windowFrames:])
	s.inBuf = s.inBuf[:remaining]

	window := make([]float32, 0, len(s.pendingTail)+len(segment))
	window = append(window, s.pendingTail...)
	window = append(window, segment...)

	return s.applyPolicyAndSplit(window)
}

// flush runs one final VAD pass over pendingTail++inBuf on upstream
// end-of-stream and appends everything to outBuf (no further holdback),
// unless DropSilentWindows drops it for containing no speech.
func (s *Stream) flush() error {
	window := make([]float32, 0, len(s.pendingTail)+len(s.inBuf))
	window = append(window, s.pendingTail...)
	window = append(window, s.inBuf...)
	s.pendingTail = nil
	s.inBuf = nil
	if len(window) == 0 {
		return nil
	}

	vadSegs, err := s.detector.Detect(window)
	if err != nil {
		return err
	}
	ranges := s.policy.ExtractRanges(vadSegs, len(window))
	if s.policy.NonSpeechGain == 0 && s.policy.DropSilentWindows && !HasSpeech(ranges) {
		return nil
	}
	ApplyGain(window, ranges, s.policy.NonSpeechGain)
	s.outBuf = append(s.outBuf, window...)
	return nil
}

func (s *Stream) applyPolicyAndSplit(window []float32) error {
	vadSegs, err := s.detector.Detect(window)
	if err != nil {
		return err
	}
	ranges := s.policy.ExtractRanges(vadSegs, len(window))

	if s.policy.NonSpeechGain == 0 && s.policy.DropSilentWindows && !HasSpeech(ranges) {
		s.pendingTail = nil
		return nil
	}

	ApplyGain(window, ranges, s.policy.NonSpeechGain)

	holdback := s.policy.HoldbackFrames()
	if holdback == 0 || len(window) <= holdback {
		s.outBuf = append(s.outBuf, window...)
		s.pendingTail = nil
		return nil
	}

	splitAt := len(window) - holdback
	s.outBuf = append(s.outBuf, window[:splitAt]...)
	s.pendingTail = append([]float32(nil), window[splitAt:]...)
	return nil
}
