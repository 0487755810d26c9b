package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voice-notes-lab/internal/audio"
	"github.com/voice-notes-lab/internal/config"
	"github.com/voice-notes-lab/internal/logging"
	"github.com/voice-notes-lab/internal/media"
	"github.com/voice-notes-lab/internal/metrics"
	"github.com/voice-notes-lab/internal/pipeline"
	"github.com/voice-notes-lab/internal/polish"
	"github.com/voice-notes-lab/internal/store"
	"github.com/voice-notes-lab/internal/transcribe"
)

func main() {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	var (
		cfgPath  = flag.String("config", "", "path to YAML config file")
		wavPath  = flag.String("file", "", "transcribe an existing WAV file")
		videoURL = flag.String("url", "", "download a video's audio track and transcribe it")
		record   = flag.Bool("record", false, "record from the microphone until interrupted")
		rawText  = flag.String("text", "", "skip audio capture and merge an existing transcript")
		noPolish = flag.Bool("no-polish", false, "skip the LLM polishing pass")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", cfg.Logging.Level)
	}
	logging.Init()
	defer func() { _ = logging.Sync() }()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" && *rawText == "" {
		logging.FatalExitf("OPENAI_API_KEY is not set; transcription requires it")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	p := buildPipeline(cfg, apiKey, *noPolish, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var res *pipeline.Result
	var err error
	switch {
	case *rawText != "":
		res, err = p.RunText(ctx, *rawText)
	case *wavPath != "":
		res, err = runFile(ctx, p, *wavPath)
	case *videoURL != "":
		res, err = runURL(ctx, p, *videoURL)
	case *record:
		// First interrupt stops the recording; the pipeline then runs on a
		// fresh context so it isn't cancelled along with the capture.
		res, err = runRecord(ctx, stop, p, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logging.FatalExitf("run failed", "err", err)
	}

	fmt.Println(res.Path)
}

func buildPipeline(cfg *config.Config, apiKey string, noPolish bool, m *metrics.Metrics) *pipeline.Pipeline {
	stitcher := &transcribe.Stitcher{
		Transcriber: transcribe.NewOpenAITranscriber(apiKey, cfg.Transcription.Model, cfg.Transcription.Timeout()),
		Guard:       transcribe.NewSizeGuard(cfg.Transcription.MaxUploadBytes),
		Metrics:     m,
	}
	var polisher pipeline.Polisher
	if cfg.Polish.Enabled && !noPolish {
		polisher = polish.New(apiKey, cfg.Polish.Model, cfg.Polish.Timeout(), m)
	}
	return &pipeline.Pipeline{
		ChunkOpts: audio.ChunkerOptions{
			MaxChunkDuration: cfg.Audio.MaxChunkDuration(),
			MinSilence:       cfg.Audio.MinSilenceDuration(),
			SilenceThreshold: int16(cfg.Audio.SilenceThreshold),
		},
		Stitcher: stitcher,
		Polisher: polisher,
		Store:    store.New(cfg.Store.Dir, store.WithExt(cfg.Store.Ext), store.WithMetrics(m)),
		Keywords: cfg.Classifier.Keywords,
		Metrics:  m,
	}
}

func runFile(ctx context.Context, p *pipeline.Pipeline, path string) (*pipeline.Result, error) {
	buf, err := loadWAV(path)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, buf)
}

func runURL(ctx context.Context, p *pipeline.Pipeline, url string) (*pipeline.Result, error) {
	path, title, err := media.DownloadAudio(ctx, url, "downloads")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	logging.Infow("processing downloaded audio", "title", title)
	return runFile(ctx, p, path)
}

func runRecord(ctx context.Context, stop context.CancelFunc, p *pipeline.Pipeline, cfg *config.Config) (*pipeline.Result, error) {
	tmp := filepath.Join(os.TempDir(), "voicenotes_recording.wav")
	fmt.Fprintln(os.Stderr, "Recording... press Ctrl-C to stop.")
	err := media.Record(ctx, tmp, media.RecordOptions{
		Device:     cfg.Audio.CaptureDevice,
		Format:     cfg.Audio.CaptureInputFormat,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	})
	stop()
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)
	return runFile(context.Background(), p, tmp)
}

func loadWAV(path string) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return audio.DecodeWAV(data)
}
