package backend

import "github.com/itsmontoya/scribble/pkg/segments"

// MockBackend is a Backend test double: FullFunc/StreamFunc supply canned
// behavior so orchestrator- and HTTP-layer tests don't need a real model.
type MockBackend struct {
	FullFunc   func(opts Opts, encoder segments.Encoder, samples []float32) error
	StreamFunc func(opts Opts, encoder segments.Encoder) (Stream, error)
}

func (m *MockBackend) TranscribeFull(opts Opts, encoder segments.Encoder, samples []float32) error {
	if m.FullFunc == nil {
		return nil
	}
	return m.FullFunc(opts, encoder, samples)
}

func (m *MockBackend) CreateStream(opts Opts, encoder segments.Encoder) (Stream, error) {
	if m.StreamFunc == nil {
		return &noopStream{}, nil
	}
	return m.StreamFunc(opts, encoder)
}

type noopStream struct{}

func (n *noopStream) OnSamples([]float32) error { return nil }
func (n *noopStream) Finish() error             { return nil }

var _ Backend = (*MockBackend)(nil)
