//go:build !whisper

package backend

import "github.com/itsmontoya/scribble/pkg/scribbleerr"

// NewDefault reports that the module was built without a real backend.
// Build with `-tags whisper` to link github.com/ggerganov/whisper.cpp's Go
// bindings, or construct a Backend of your own (see MockBackend for the
// shape tests use).
func NewDefault(modelPath string) (Backend, error) {
	return nil, scribbleerr.New(scribbleerr.InvalidInput, "built without a backend: build with -tags whisper")
}
