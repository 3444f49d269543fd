package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pruner evicts expired job artifacts from the data directory. Artifacts are
// job-local by design, so once a job's retention window passes nothing in
// the system references them anymore.
type Pruner struct {
	dataDir   string
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewPruner creates a pruner that evicts artifacts older than retention.
func NewPruner(dataDir string, retention time.Duration, log zerolog.Logger) *Pruner {
	return &Pruner{
		dataDir:   dataDir,
		retention: retention,
		interval:  1 * time.Hour,
		log:       log.With().Str("component", "pruner").Logger(),
		stop:      make(chan struct{}),
	}
}

func (p *Pruner) Start() {
	go p.loop()
}

func (p *Pruner) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Pruner) loop() {
	// Run once on startup to clear any backlog from downtime
	p.prune()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.prune()
		case <-p.stop:
			return
		}
	}
}

func (p *Pruner) prune() {
	if p.retention == 0 {
		return
	}

	cutoff := time.Now().Add(-p.retention)
	var prunedCount int
	var prunedBytes int64
	var remaining int64

	type fileEntry struct {
		path    string
		modTime time.Time
		size    int64
	}
	var files []fileEntry

	filepath.WalkDir(p.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, fileEntry{path: path, modTime: info.ModTime(), size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files {
		if f.modTime.Before(cutoff) {
			if err := os.Remove(f.path); err == nil {
				prunedCount++
				prunedBytes += f.size
				continue
			}
		}
		remaining += f.size
	}

	p.removeEmptyDirs()

	if prunedCount > 0 {
		p.log.Info().
			Int("pruned", prunedCount).
			Str("freed", humanizeBytes(prunedBytes)).
			Str("remaining", humanizeBytes(remaining)).
			Msg("artifact prune complete")
	}
}

// removeEmptyDirs clears out per-job directories left empty by pruning.
func (p *Pruner) removeEmptyDirs() {
	entries, _ := os.ReadDir(p.dataDir)
	for _, jobDir := range entries {
		if !jobDir.IsDir() {
			continue
		}
		path := filepath.Join(p.dataDir, jobDir.Name())
		children, err := os.ReadDir(path)
		if err == nil && len(children) == 0 {
			os.Remove(path)
		}
	}
}

func humanizeBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
