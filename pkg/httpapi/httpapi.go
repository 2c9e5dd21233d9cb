// Package httpapi exposes the Scribble Orchestrator over HTTP: a single
// transcription endpoint plus small operational endpoints, in the plain
// net/http + manual-CORS style the rest of this codebase's server package
// uses.
package httpapi

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/itsmontoya/scribble/pkg/backend"
	"github.com/itsmontoya/scribble/pkg/scribble"
	"github.com/itsmontoya/scribble/pkg/scribbleerr"
	"github.com/itsmontoya/scribble/pkg/vad"
)

// Server serves the HTTP surface for one shared Backend. VadDetector is
// optional; requests asking for vad=true without one configured fail with
// InvalidInput.
type Server struct {
	Backend     backend.Backend
	ModelNames  []string
	VadDetector vad.Detector
}

func NewServer(be backend.Backend, modelNames []string) *Server {
	return &Server{Backend: be, ModelNames: modelNames}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transcribe", s.handleTranscribe)
	mux.HandleFunc("/v1/models", s.handleModels)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func withCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, outputType, err := parseOpts(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts.VadDetector = s.VadDetector

	requestID := uuid.New().String()

	switch outputType {
	case scribble.OutputVTT:
		w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}

	if err := scribble.Transcribe(r.Body, w, opts, s.Backend); err != nil {
		log.Printf("[scribble] request %s: transcription failed: %v", requestID, err)
		writeErrorTrailer(w, err)
		return
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	io.WriteString(w, `{"models":[`)
	for i, name := range s.ModelNames {
		if i > 0 {
			io.WriteString(w, ",")
		}
		io.WriteString(w, strconv.Quote(name))
	}
	io.WriteString(w, `]}`)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// writeErrorTrailer reports mid-stream failures after headers are already
// committed: the response has begun, so the best we can do is log the kind
// and close the connection rather than rewrite a status line.
func writeErrorTrailer(w http.ResponseWriter, err error) {
	kind := scribbleerr.KindOf(err)
	if hj, ok := w.(http.Hijacker); ok {
		if conn, _, hjErr := hj.Hijack(); hjErr == nil {
			conn.Close()
			return
		}
	}
	log.Printf("[scribble] unable to hijack connection to report %s error", kind)
}

// parseOpts does not expose vad.Policy fields (DropSilentWindows, custom
// gain, pad/merge timings): requests asking for vad=true always get
// vad.DefaultPolicy(). Callers needing a non-default policy must currently
// call scribble.Transcribe directly.
func parseOpts(r *http.Request) (scribble.Opts, scribble.OutputType, error) {
	q := r.URL.Query()

	opts := scribble.Opts{
		ModelKey:                     q.Get("model"),
		EnableTranslateToEnglish:     q.Get("translate") == "true",
		EnableVoiceActivityDetection: q.Get("vad") == "true",
		Language:                     q.Get("language"),
		EmitSingleSegments:           q.Get("emit_single_segments") == "true",
		HintExtension:                q.Get("hint"),
	}

	if raw := q.Get("incremental_min_window_seconds"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return opts, 0, errors.New("invalid incremental_min_window_seconds")
		}
		opts.IncrementalMinWindowSeconds = uint(n)
	}

	outputType := scribble.OutputJSON
	switch q.Get("format") {
	case "", "json":
		outputType = scribble.OutputJSON
	case "vtt":
		outputType = scribble.OutputVTT
	default:
		return opts, 0, errors.New("unsupported format: must be json or vtt")
	}
	opts.OutputType = outputType

	return opts, outputType, nil
}
