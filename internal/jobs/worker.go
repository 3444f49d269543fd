package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pekdemirevren/pod2vid/internal/align"
	"github.com/pekdemirevren/pod2vid/internal/diarize"
	"github.com/pekdemirevren/pod2vid/internal/metrics"
	"github.com/pekdemirevren/pod2vid/internal/storage"
	"github.com/pekdemirevren/pod2vid/internal/transcribe"
)

// QueueStats reports the current state of the job queue.
type QueueStats struct {
	Pending   int   `json:"pending"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// WorkerPoolOptions configures the job worker pool.
type WorkerPoolOptions struct {
	Registry *Registry
	Store    *storage.LocalStore
	Events   *EventBus

	ASR      transcribe.Provider
	Diarizer diarize.Provider // nil disables diarization entirely

	AlignOpts       align.Options
	Language        string
	Temperature     float64
	MinSpeakers     int
	MaxSpeakers     int
	PreprocessAudio bool

	JobTimeout time.Duration
	Workers    int
	QueueSize  int
	Log        zerolog.Logger
}

// WorkerPool runs transcription jobs on a fixed set of goroutines.
type WorkerPool struct {
	jobs   chan string // job IDs
	opts   WorkerPoolOptions
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	completed atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool creates a new job worker pool.
func NewWorkerPool(opts WorkerPoolOptions) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobs:   make(chan string, opts.QueueSize),
		opts:   opts,
		log:    opts.Log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	if wp.opts.PreprocessAudio {
		if transcribe.CheckSox() {
			wp.log.Info().Msg("audio preprocessing enabled (sox found)")
		} else {
			wp.log.Warn().Msg("PREPROCESS_AUDIO=true but sox not found in PATH; preprocessing disabled")
		}
	}

	for i := 0; i < wp.opts.Workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.log.Info().Int("workers", wp.opts.Workers).Int("queue_size", wp.opts.QueueSize).Msg("job worker pool started")
}

// Stop signals workers to drain and waits for completion.
func (wp *WorkerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
	wp.cancel()
	wp.log.Info().
		Int64("completed", wp.completed.Load()).
		Int64("failed", wp.failed.Load()).
		Msg("job worker pool stopped")
}

// Enqueue adds a job to the queue. Returns false if the queue is full.
func (wp *WorkerPool) Enqueue(jobID string) bool {
	select {
	case wp.jobs <- jobID:
		wp.publish("job_queued", jobID, nil)
		return true
	default:
		return false
	}
}

// Stats returns current queue statistics.
func (wp *WorkerPool) Stats() QueueStats {
	return QueueStats{
		Pending:   len(wp.jobs),
		Completed: wp.completed.Load(),
		Failed:    wp.failed.Load(),
	}
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int { return wp.opts.Workers }

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	log := wp.log.With().Int("worker", id).Logger()

	for jobID := range wp.jobs {
		if err := wp.processJob(log, jobID); err != nil {
			wp.failed.Add(1)
			metrics.JobsFailedTotal.Inc()
			wp.opts.Registry.Fail(jobID, err.Error())
			wp.publish("job_failed", jobID, map[string]any{"error": err.Error()})
			log.Warn().Err(err).Str("job_id", jobID).Msg("job failed")
		} else {
			wp.completed.Add(1)
			metrics.JobsCompletedTotal.Inc()
		}
	}
}

func (wp *WorkerPool) processJob(log zerolog.Logger, jobID string) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(wp.ctx, wp.opts.JobTimeout)
	defer cancel()

	job, err := wp.opts.Registry.Get(jobID)
	if err != nil {
		return err
	}

	wp.opts.Registry.MarkProcessing(jobID)
	wp.publish("job_processing", jobID, nil)

	// 1. Resolve audio
	audioPath := wp.opts.Store.LocalPath(job.AudioKey)
	if audioPath == "" {
		return fmt.Errorf("audio artifact missing: %s", job.AudioKey)
	}

	// 2. Optional preprocessing
	transcribePath := audioPath
	if wp.opts.PreprocessAudio {
		processed, cleanup, err := transcribe.Preprocess(ctx, audioPath)
		if err != nil {
			log.Warn().Err(err).Msg("preprocessing failed, using original audio")
		} else {
			transcribePath = processed
			defer cleanup()
		}
	}

	// 3. Speech-to-text
	asrResp, err := wp.opts.ASR.Transcribe(ctx, transcribePath, transcribe.TranscribeOpts{
		Temperature: wp.opts.Temperature,
		Language:    wp.opts.Language,
	})
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	segments := make([]align.TextSegment, 0, len(asrResp.Segments))
	for _, s := range asrResp.Segments {
		segments = append(segments, align.TextSegment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	// 4. Diarization, best effort. Failure or emptiness is a valid input
	// state for the core, never a job failure.
	var turns []align.SpeakerTurn
	if wp.opts.Diarizer != nil {
		diaResp, err := wp.opts.Diarizer.Diarize(ctx, audioPath, diarize.DiarizeOpts{
			MinSpeakers: wp.opts.MinSpeakers,
			MaxSpeakers: wp.opts.MaxSpeakers,
		})
		if err != nil {
			log.Warn().Err(err).Str("job_id", jobID).Msg("diarization failed, falling back to pause heuristic")
		} else {
			for _, t := range diaResp.Turns {
				turns = append(turns, align.SpeakerTurn{Start: t.Start, End: t.End, SpeakerID: t.Speaker})
			}
		}
	}

	// 5. Align and assemble
	tr, err := align.Assemble(segments, turns, wp.opts.AlignOpts)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	if tr.Heuristic {
		metrics.FallbackUsedTotal.Inc()
	}

	rendered, err := align.RenderTranscript(tr.Lines)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	// 6. Store transcript
	transcriptKey := jobID + "/transcript.txt"
	if err := wp.opts.Store.Save(ctx, transcriptKey, []byte(rendered)); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}

	labelSource := SourceDiarization
	if tr.Heuristic {
		labelSource = SourceHeuristic
	}

	durationMs := int(time.Since(start).Milliseconds())
	metrics.JobDuration.Observe(time.Since(start).Seconds())

	res := &Result{
		TranscriptKey: transcriptKey,
		Lines:         len(tr.Lines),
		Speakers:      tr.Speakers,
		LabelSource:   labelSource,
		Language:      asrResp.Language,
		AudioDuration: asrResp.Duration,
		ProcessingMs:  durationMs,
	}
	wp.opts.Registry.Complete(jobID, res)
	wp.publish("job_completed", jobID, res)

	log.Debug().
		Str("job_id", jobID).
		Int("lines", res.Lines).
		Int("speakers", res.Speakers).
		Str("label_source", labelSource).
		Int("duration_ms", durationMs).
		Msg("job complete")

	return nil
}

func (wp *WorkerPool) publish(eventType, jobID string, payload any) {
	if wp.opts.Events != nil {
		wp.opts.Events.Publish(eventType, jobID, payload)
	}
}
