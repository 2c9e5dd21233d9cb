//go:build whisper

package backend

// NewDefault loads the whisper.cpp-backed implementation. Build with
// `-tags whisper` (and the corresponding cgo/ggml toolchain) to link it in.
func NewDefault(modelPath string) (Backend, error) {
	return NewWhisperBackend(modelPath)
}
