package vad

import "sync"

// MockDetector is a Detector test double: DetectFunc supplies canned
// results while DetectCalls records every input for assertions.
type MockDetector struct {
	// DetectFunc is called when Detect is invoked. If nil, returns no
	// speech ranges.
	DetectFunc func(samples []float32) ([]Segment, error)

	DetectCalls   [][]float32
	ResetCalled   bool
	DestroyCalled bool

	mu sync.Mutex
}

// NewMockDetector returns a MockDetector reporting no speech.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// NewMockDetectorWithSegments returns a MockDetector that always reports
// segments.
func NewMockDetectorWithSegments(segments []Segment) *MockDetector {
	return &MockDetector{
		DetectFunc: func([]float32) ([]Segment, error) {
			return segments, nil
		},
	}
}

func (m *MockDetector) Detect(samples []float32) ([]Segment, error) {
	m.mu.Lock()
	cp := make([]float32, len(samples))
	copy(cp, samples)
	m.DetectCalls = append(m.DetectCalls, cp)
	m.mu.Unlock()

	if m.DetectFunc != nil {
		return m.DetectFunc(samples)
	}
	return nil, nil
}

func (m *MockDetector) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalled = true
	return nil
}

func (m *MockDetector) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DestroyCalled = true
	return nil
}

func (m *MockDetector) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.DetectCalls)
}

var _ Detector = (*MockDetector)(nil)
