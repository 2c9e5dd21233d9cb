//go:build !vad

package vad

import "github.com/itsmontoya/scribble/pkg/scribbleerr"

// NewDefaultDetector reports that the module was built without a real VAD
// model. Build with `-tags vad` to link github.com/streamer45/silero-vad-go,
// or construct a Detector of your own (see MockDetector for the shape tests
// use).
func NewDefaultDetector(modelPath string) (Detector, error) {
	return nil, scribbleerr.New(scribbleerr.InvalidInput, "built without a VAD model: build with -tags vad")
}
