// Package transport implements the bounded sample FIFO between the decode
// producer and the inference consumer, plus a uniform
// receiver so the consumer loop stays linear whether or not VAD filtering
// is interposed.
package transport

import (
	"sync"

	"github.com/itsmontoya/scribble/pkg/scribbleerr"
)

// Capacity is the bounded channel's fixed size.
const Capacity = 512

// Sender is the producer side: a sink that enqueues chunks, returning false
// once the consumer end has disconnected.
type Sender struct {
	ch   chan []float32
	done chan struct{}
}

// NewChannel creates a connected Sender/Receiver pair with Capacity slots.
// done is shared between both ends: Receiver.Close signals it so a blocked
// OnSamples unblocks even while the channel itself is full.
func NewChannel() (*Sender, *Receiver) {
	ch := make(chan []float32, Capacity)
	done := make(chan struct{})
	return &Sender{ch: ch, done: done}, &Receiver{ch: ch, done: done}
}

// OnSamples enqueues chunk, cloning it so the caller's buffer can be
// reused. Returns false once the consumer has dropped the receiver via
// Receiver.Close. It must not be called after Sender.Close.
func (s *Sender) OnSamples(chunk []float32) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	clone := make([]float32, len(chunk))
	copy(clone, chunk)
	select {
	case s.ch <- clone:
		return true
	case <-s.done:
		return false
	}
}

// Close signals the end of the stream to the receiver.
func (s *Sender) Close() {
	close(s.ch)
}

// Receiver is the plain blocking consumer side.
type Receiver struct {
	ch        chan []float32
	done      chan struct{}
	closeOnce sync.Once
}

// Recv blocks until a chunk is available or the sender has closed and
// drained, in which case it returns the disconnect error.
func (r *Receiver) Recv() ([]float32, error) {
	chunk, ok := <-r.ch
	if !ok {
		return nil, scribbleerr.New(scribbleerr.Io, "sample transport disconnected")
	}
	return chunk, nil
}

// Close drops the receiver: any OnSamples call blocked on a full channel
// (or any future call) unblocks immediately and reports false, letting the
// producer exit instead of stalling against a consumer that has stopped
// draining the channel. Safe to call more than once.
func (r *Receiver) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// SamplesRx is the uniform receive interface consumed by the orchestrator:
// a single recv() whether or not a VAD filter is interposed.
type SamplesRx interface {
	Recv() ([]float32, error)
}

var _ SamplesRx = (*Receiver)(nil)
