// Package ingest provides the drop-directory intake: audio files placed in a
// watched directory become transcription jobs, as an alternative to the HTTP
// upload endpoint.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pekdemirevren/pod2vid/internal/jobs"
	"github.com/pekdemirevren/pod2vid/internal/storage"
)

// audioExtensions are the file types the watcher picks up. Anything else in
// the drop directory is ignored.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// FileWatcher monitors a drop directory for new audio files and enqueues a
// transcription job for each. Files are debounced so partially written
// uploads are not picked up mid-copy, then moved into the artifact store so
// the drop directory stays clean.
type FileWatcher struct {
	registry *jobs.Registry
	pool     *jobs.WorkerPool
	store    *storage.LocalStore
	watchDir string
	log      zerolog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	// Debounce: coalesce rapid Create+Write events on the same file.
	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	filesProcessed atomic.Int64
	filesSkipped   atomic.Int64
}

// NewFileWatcher creates a watcher over watchDir.
func NewFileWatcher(registry *jobs.Registry, pool *jobs.WorkerPool, store *storage.LocalStore, watchDir string, log zerolog.Logger) *FileWatcher {
	return &FileWatcher{
		registry:       registry,
		pool:           pool,
		store:          store,
		watchDir:       watchDir,
		log:            log.With().Str("component", "watcher").Logger(),
		debounceTimers: make(map[string]*time.Timer),
	}
}

// Start initializes the fsnotify watcher and begins watching for new files.
func (fw *FileWatcher) Start() error {
	if err := os.MkdirAll(fw.watchDir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	fw.watcher = w

	if err := w.Add(fw.watchDir); err != nil {
		w.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw.cancel = cancel

	fw.log.Info().Str("watch_dir", fw.watchDir).Msg("file watcher initialized")
	go fw.watchLoop(ctx)
	return nil
}

// Stop closes the fsnotify watcher.
func (fw *FileWatcher) Stop() {
	if fw.cancel != nil {
		fw.cancel()
	}
	if fw.watcher != nil {
		fw.watcher.Close()
	}
	fw.log.Info().
		Int64("files_processed", fw.filesProcessed.Load()).
		Int64("files_skipped", fw.filesSkipped.Load()).
		Msg("file watcher stopped")
}

// Stats returns processed/skipped counts for the health endpoint.
func (fw *FileWatcher) Stats() (processed, skipped int64) {
	return fw.filesProcessed.Load(), fw.filesSkipped.Load()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !audioExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			fw.scheduleProcess(event.Name)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

// scheduleProcess debounces file processing by 500ms. This coalesces rapid
// Create+Write events and ensures the file is fully written before reading.
func (fw *FileWatcher) scheduleProcess(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if t, ok := fw.debounceTimers[path]; ok {
		t.Reset(500 * time.Millisecond)
		return
	}

	fw.debounceTimers[path] = time.AfterFunc(500*time.Millisecond, func() {
		fw.debounceMu.Lock()
		delete(fw.debounceTimers, path)
		fw.debounceMu.Unlock()

		fw.processAudioFile(path)
	})
}

// processAudioFile moves a dropped file into the artifact store, registers a
// job for it, and enqueues it.
func (fw *FileWatcher) processAudioFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		fw.log.Warn().Err(err).Str("path", path).Msg("failed to open dropped file")
		fw.filesSkipped.Add(1)
		return
	}

	filename := filepath.Base(path)
	job := fw.registry.Create(filename, "")
	key := job.ID + "/" + filename

	_, err = fw.store.SaveStream(context.Background(), key, f)
	f.Close()
	if err != nil {
		fw.log.Warn().Err(err).Str("path", path).Msg("failed to store dropped file")
		fw.registry.Fail(job.ID, "store upload: "+err.Error())
		fw.filesSkipped.Add(1)
		return
	}
	fw.registry.SetAudioKey(job.ID, key)

	if !fw.pool.Enqueue(job.ID) {
		fw.registry.Fail(job.ID, "job queue full")
		fw.filesSkipped.Add(1)
		return
	}

	// The store owns the bytes now; clear the drop directory.
	if err := os.Remove(path); err != nil {
		fw.log.Warn().Err(err).Str("path", path).Msg("failed to remove dropped file")
	}

	fw.filesProcessed.Add(1)
	fw.log.Info().Str("job_id", job.ID).Str("file", filename).Msg("dropped file enqueued")
}
