// Command scribble transcribes one audio or video stream, or serves the
// same transcription over HTTP, backed by the whisper.cpp model bindings.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itsmontoya/scribble/pkg/backend"
	"github.com/itsmontoya/scribble/pkg/httpapi"
	"github.com/itsmontoya/scribble/pkg/scribble"
	"github.com/itsmontoya/scribble/pkg/vad"
)

func main() {
	godotenv.Load()

	var (
		addr         = flag.String("addr", "", "serve HTTP on this address instead of running a one-shot transcription")
		modelPath    = flag.String("model", os.Getenv("SCRIBBLE_MODEL_PATH"), "path to a ggml whisper model")
		inPath       = flag.String("in", "", "input media file (defaults to stdin)")
		outPath      = flag.String("out", "", "output file (defaults to stdout)")
		format       = flag.String("format", "json", "segment encoding: json or vtt")
		language     = flag.String("language", "", "language hint, empty for auto-detect")
		translate    = flag.Bool("translate", false, "translate recognized speech to English")
		enableVad    = flag.Bool("vad", false, "filter non-speech audio before transcription")
		vadModelPath = flag.String("vad-model", os.Getenv("SCRIBBLE_VAD_MODEL_PATH"), "path to a silero VAD onnx model, required with -vad")
		minWindow    = flag.Uint("min-window-seconds", 1, "minimum incremental inference window, in seconds")
	)
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("missing -model (or SCRIBBLE_MODEL_PATH)")
	}

	be, err := backend.NewDefault(*modelPath)
	if err != nil {
		log.Fatalf("load backend: %v", err)
	}
	if closer, ok := be.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var detector vad.Detector
	if *enableVad {
		detector, err = newVadDetector(*vadModelPath)
		if err != nil {
			log.Fatalf("load VAD model: %v", err)
		}
		defer detector.Destroy()
	}

	outputType := scribble.OutputJSON
	if *format == "vtt" {
		outputType = scribble.OutputVTT
	} else if *format != "json" {
		log.Fatalf("unsupported -format %q: must be json or vtt", *format)
	}

	opts := scribble.Opts{
		EnableTranslateToEnglish:     *translate,
		EnableVoiceActivityDetection: *enableVad,
		Language:                     *language,
		OutputType:                   outputType,
		IncrementalMinWindowSeconds:  *minWindow,
		VadDetector:                  detector,
	}

	if *addr != "" {
		runServer(*addr, be, detector)
		return
	}

	runOnce(*inPath, *outPath, opts, be)
}

func newVadDetector(modelPath string) (vad.Detector, error) {
	if modelPath == "" {
		return nil, errors.New("missing -vad-model (or SCRIBBLE_VAD_MODEL_PATH)")
	}
	return vad.NewDefaultDetector(modelPath)
}

func runOnce(inPath, outPath string, opts scribble.Opts, be backend.Backend) {
	in := os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := scribble.Transcribe(in, out, opts, be); err != nil {
		log.Fatalf("transcribe: %v", err)
	}
}

func runServer(addr string, be backend.Backend, detector vad.Detector) {
	srv := httpapi.NewServer(be, []string{"whisper"})
	srv.VadDetector = detector

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Routes(),
	}

	go func() {
		log.Printf("[scribble] listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[scribble] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("[scribble] shutdown error: %v", err)
	}
}
