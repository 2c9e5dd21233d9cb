//go:build vad

package vad

// NewDefaultDetector loads the silero-vad-go backed implementation. Build
// with `-tags vad` to link it in.
func NewDefaultDetector(modelPath string) (Detector, error) {
	return NewSileroDetector(SileroConfig{
		ModelPath:    modelPath,
		Threshold:    DefaultPolicy().Threshold,
		MinSilenceMs: DefaultPolicy().PostPadMs,
		SpeechPadMs:  DefaultPolicy().PrePadMs,
	})
}
