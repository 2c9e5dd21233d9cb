//go:build whisper

package backend

import (
	"runtime"
	"sync"

	gowhisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/itsmontoya/scribble/pkg/incremental"
	"github.com/itsmontoya/scribble/pkg/scribbleerr"
	"github.com/itsmontoya/scribble/pkg/segments"
	"github.com/itsmontoya/scribble/pkg/token"
)

var installLogOnce sync.Once

// installNoopLog installs a no-op ggml log callback exactly once per
// process: ggml's log hook is process-global, so installing it per-model
// would stomp on other loaded models.
func installNoopLog() {
	installLogOnce.Do(func() {
		gowhisper.SetLogCallback(func(string) {})
	})
}

// WhisperBackend wraps one loaded whisper.cpp model.
type WhisperBackend struct {
	model gowhisper.Model
}

// NewWhisperBackend loads a ggml model file.
func NewWhisperBackend(modelPath string) (*WhisperBackend, error) {
	installNoopLog()
	model, err := gowhisper.New(modelPath)
	if err != nil {
		return nil, scribbleerr.Wrap(scribbleerr.Backend, "load whisper model", err)
	}
	return &WhisperBackend{model: model}, nil
}

func (b *WhisperBackend) Close() error {
	return b.model.Close()
}

func (b *WhisperBackend) newContext(opts Opts) (gowhisper.Context, error) {
	ctx, err := b.model.NewContext()
	if err != nil {
		return nil, scribbleerr.Wrap(scribbleerr.Backend, "create whisper context", err)
	}
	if opts.Language != "" {
		_ = ctx.SetLanguage(opts.Language)
	}
	ctx.SetTranslate(opts.EnableTranslateToEnglish)
	ctx.SetThreads(uint(runtime.NumCPU()))
	ctx.SetTokenTimestamps(true)
	return ctx, nil
}

// TranscribeFull runs one-shot inference over the whole buffer and writes
// every resulting segment.
func (b *WhisperBackend) TranscribeFull(opts Opts, encoder segments.Encoder, samples []float32) error {
	ctx, err := b.newContext(opts)
	if err != nil {
		return err
	}
	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return scribbleerr.Wrap(scribbleerr.Backend, "whisper process", err)
	}
	for {
		seg, err := ctx.NextSegment()
		if err != nil {
			break
		}
		if err := encoder.WriteSegment(toSegment(seg, 0, opts.Language)); err != nil {
			return err
		}
	}
	return nil
}

// CreateStream builds a streaming handle backed by the incremental
// transcriber: each fresh whisper context is scoped to one inference pass
// over the live window, exactly as the batch path does, but driven
// incrementally.
func (b *WhisperBackend) CreateStream(opts Opts, encoder segments.Encoder) (Stream, error) {
	infer := func(window []float32) ([]incremental.RawSegment, error) {
		ctx, err := b.newContext(opts)
		if err != nil {
			return nil, err
		}
		if err := ctx.Process(window, nil, nil, nil); err != nil {
			return nil, scribbleerr.Wrap(scribbleerr.Backend, "whisper process", err)
		}
		var out []incremental.RawSegment
		for {
			seg, err := ctx.NextSegment()
			if err != nil {
				break
			}
			out = append(out, toRawSegment(seg))
		}
		return out, nil
	}
	tr := incremental.New(infer, encoder, opts.IncrementalMinWindowSeconds, opts.EmitSingleSegments, opts.Language)
	return &transcriberStream{tr: tr}, nil
}

type transcriberStream struct {
	tr *incremental.Transcriber
}

func (s *transcriberStream) OnSamples(chunk []float32) error { return s.tr.OnSamples(chunk) }
func (s *transcriberStream) Finish() error                   { return s.tr.Finish() }

func toRawSegment(seg gowhisper.Segment) incremental.RawSegment {
	return incremental.RawSegment{
		StartSeconds:             float32(seg.Start.Seconds()),
		EndSeconds:               float32(seg.End.Seconds()),
		EndTimestampCentiseconds: int(seg.End.Seconds() * 100),
		Text:                     seg.Text,
		Tokens:                   toTokens(seg.Tokens),
		NextSpeakerTurn:          seg.SpeakerTurnNext,
	}
}

func toSegment(seg gowhisper.Segment, offsetSeconds float32, languageHint string) segments.Segment {
	lang := languageHint
	if lang == "" {
		lang = "und"
	}
	return segments.Segment{
		StartSeconds:    float32(seg.Start.Seconds()) + offsetSeconds,
		EndSeconds:      float32(seg.End.Seconds()) + offsetSeconds,
		Text:            seg.Text,
		Tokens:          toTokens(seg.Tokens),
		LanguageCode:    lang,
		NextSpeakerTurn: seg.SpeakerTurnNext,
	}
}

// toTokens converts whisper.cpp's per-token output, flagging special
// tokens (Id above the model's normal vocabulary range reports as text
// wrapped in "[_TT_...]"/"<|...|>") and negative timestamps as unknown so
// token.RefineTiming can exclude them.
func toTokens(ts []gowhisper.Token) []token.Token {
	out := make([]token.Token, len(ts))
	for i, tk := range ts {
		start, unknownStart := token.Clamp(float32(tk.Start.Seconds()))
		end, unknownEnd := token.Clamp(float32(tk.End.Seconds()))
		out[i] = token.Token{
			StartSeconds:     start,
			EndSeconds:       end,
			Text:             tk.Text,
			Probability:      tk.P,
			Special:          isSpecialToken(tk.Text),
			TimestampUnknown: unknownStart || unknownEnd,
		}
	}
	return out
}

func isSpecialToken(text string) bool {
	if len(text) < 2 {
		return false
	}
	return (text[0] == '[' && text[len(text)-1] == ']') ||
		(len(text) > 3 && text[:2] == "<|" && text[len(text)-2:] == "|>")
}

var _ Backend = (*WhisperBackend)(nil)
