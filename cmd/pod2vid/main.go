// pod2vid turns spoken audio into speaker-attributed transcripts. It runs
// either as a one-shot CLI (transcribe a single file and exit) or as an HTTP
// service with a job queue, SSE event stream, and drop-directory intake.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pekdemirevren/pod2vid/internal/align"
	"github.com/pekdemirevren/pod2vid/internal/api"
	"github.com/pekdemirevren/pod2vid/internal/config"
	"github.com/pekdemirevren/pod2vid/internal/diarize"
	"github.com/pekdemirevren/pod2vid/internal/ingest"
	"github.com/pekdemirevren/pod2vid/internal/jobs"
	"github.com/pekdemirevren/pod2vid/internal/storage"
	"github.com/pekdemirevren/pod2vid/internal/transcribe"
)

var version = "dev" // set via -ldflags at build time

func main() {
	var (
		serve      = flag.Bool("serve", false, "run the HTTP service instead of one-shot mode")
		audioPath  = flag.String("audio", "", "audio file to transcribe (one-shot mode)")
		outPath    = flag.String("out", "", "write the transcript here instead of stdout (one-shot mode)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR)")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
		envFile    = flag.String("env", "", "path to .env file (default ./.env)")
		dataDir    = flag.String("data-dir", "", "artifact directory (overrides DATA_DIR)")
		watchDir   = flag.String("watch-dir", "", "drop directory to watch for audio files (overrides WATCH_DIR)")
		whisperURL = flag.String("whisper-url", "", "whisper server URL (overrides WHISPER_URL)")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println("pod2vid", version)
		return
	}

	cfg, err := config.Load(config.Overrides{
		EnvFile:    *envFile,
		HTTPAddr:   *addr,
		LogLevel:   *logLevel,
		DataDir:    *dataDir,
		WatchDir:   *watchDir,
		WhisperURL: *whisperURL,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if *serve {
		if err := runServe(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("service failed")
		}
		return
	}

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pod2vid -audio FILE [-out FILE] | pod2vid -serve")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := runOneShot(cfg, log, *audioPath, *outPath); err != nil {
		log.Fatal().Err(err).Msg("transcription failed")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	if fi, _ := os.Stderr.Stat(); fi != nil && fi.Mode()&os.ModeCharDevice != 0 {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return log
}

func alignOptions(cfg *config.Config) align.Options {
	return align.Options{
		PauseThreshold:      cfg.PauseThreshold,
		MaxFallbackSpeakers: cfg.MaxFallbackSpeakers,
		MergeGap:            cfg.MergeGap,
		MaxLineDuration:     cfg.MaxLineDuration,
	}
}

func newDiarizer(cfg *config.Config) diarize.Provider {
	if !cfg.DiarizeEnabled {
		return nil
	}
	return diarize.NewPyannoteClient(cfg.PyannoteURL, cfg.PyannoteTimeout)
}

// runOneShot transcribes a single file and writes the transcript to outPath
// or stdout. Diarization failure falls back to the pause heuristic, same as
// in service mode.
func runOneShot(cfg *config.Config, log zerolog.Logger, audioPath, outPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file: %w", err)
	}

	asr := transcribe.NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperTimeout)

	transcribePath := audioPath
	if cfg.PreprocessAudio && transcribe.CheckSox() {
		processed, cleanup, err := transcribe.Preprocess(ctx, audioPath)
		if err != nil {
			log.Warn().Err(err).Msg("preprocessing failed, using original audio")
		} else {
			transcribePath = processed
			defer cleanup()
		}
	}

	log.Info().Str("file", audioPath).Str("model", asr.Model()).Msg("transcribing")
	asrResp, err := asr.Transcribe(ctx, transcribePath, transcribe.TranscribeOpts{
		Temperature: cfg.Temperature,
		Language:    cfg.Language,
	})
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	segments := make([]align.TextSegment, 0, len(asrResp.Segments))
	for _, s := range asrResp.Segments {
		segments = append(segments, align.TextSegment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}

	var turns []align.SpeakerTurn
	if diarizer := newDiarizer(cfg); diarizer != nil {
		log.Info().Str("file", audioPath).Msg("diarizing")
		diaResp, err := diarizer.Diarize(ctx, audioPath, diarize.DiarizeOpts{
			MinSpeakers: cfg.MinSpeakers,
			MaxSpeakers: cfg.MaxSpeakers,
		})
		if err != nil {
			log.Warn().Err(err).Msg("diarization failed, falling back to pause heuristic")
		} else {
			for _, t := range diaResp.Turns {
				turns = append(turns, align.SpeakerTurn{Start: t.Start, End: t.End, SpeakerID: t.Speaker})
			}
		}
	}

	tr, err := align.Assemble(segments, turns, alignOptions(cfg))
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	if tr.Heuristic {
		log.Warn().Msg("speaker labels come from the pause heuristic, not acoustic diarization")
	}

	rendered, err := align.RenderTranscript(tr.Lines)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if outPath == "" {
		fmt.Print(rendered)
	} else {
		if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		log.Info().Str("out", outPath).Int("lines", len(tr.Lines)).Int("speakers", tr.Speakers).Msg("transcript written")
	}
	return nil
}

// runServe wires the full service: artifact store, job registry, worker pool,
// event bus, drop-dir watcher, retention pruner, HTTP API.
func runServe(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", version).Str("addr", cfg.HTTPAddr).Msg("starting pod2vid service")

	store, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	pruner := storage.NewPruner(cfg.DataDir, cfg.Retention, log)
	pruner.Start()
	defer pruner.Stop()

	registry := jobs.NewRegistry()
	bus := jobs.NewEventBus(256)

	pool := jobs.NewWorkerPool(jobs.WorkerPoolOptions{
		Registry:        registry,
		Store:           store,
		Events:          bus,
		ASR:             transcribe.NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperTimeout),
		Diarizer:        newDiarizer(cfg),
		AlignOpts:       alignOptions(cfg),
		Language:        cfg.Language,
		Temperature:     cfg.Temperature,
		MinSpeakers:     cfg.MinSpeakers,
		MaxSpeakers:     cfg.MaxSpeakers,
		PreprocessAudio: cfg.PreprocessAudio,
		JobTimeout:      cfg.WhisperTimeout + cfg.PyannoteTimeout,
		Workers:         cfg.Workers,
		QueueSize:       cfg.QueueSize,
		Log:             log.With().Str("component", "worker").Logger(),
	})
	pool.Start()

	var watcher *ingest.FileWatcher
	if cfg.WatchDir != "" {
		watcher = ingest.NewFileWatcher(registry, pool, store, cfg.WatchDir, log)
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("file watcher: %w", err)
		}
	}

	srv := api.NewServer(api.ServerOptions{
		Config:   cfg,
		Registry: registry,
		Pool:     pool,
		Events:   bus,
		Store:    store,
		Version:  version,
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}
	if watcher != nil {
		watcher.Stop()
	}
	pool.Stop()
	bus.Close()

	log.Info().Msg("pod2vid stopped")
	return nil
}
