// Package jobs tracks transcription jobs through their lifecycle and runs
// the per-job pipeline: transcribe, diarize (best effort), align, render,
// store. Jobs live in process memory only: there is no cross-job state and
// nothing survives a restart except the artifacts on disk.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Label provenance values for Result.LabelSource.
const (
	SourceDiarization = "diarization"
	SourceHeuristic   = "heuristic"
)

// ErrNotFound is returned by Registry lookups for unknown job IDs.
var ErrNotFound = errors.New("job not found")

// Job is one transcription request moving through the pipeline.
type Job struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	AudioKey    string     `json:"-"` // storage key of the uploaded audio
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Result      *Result    `json:"result,omitempty"`
}

// Result describes a completed job. LabelSource tells the caller whether the
// speaker labels are acoustic (diarization) or the low-confidence pause
// heuristic. Consumers must not present heuristic labels as detection.
type Result struct {
	TranscriptKey string  `json:"-"`
	Lines         int     `json:"lines"`
	Speakers      int     `json:"speakers"`
	LabelSource   string  `json:"label_source"`
	Language      string  `json:"language,omitempty"`
	AudioDuration float64 `json:"audio_duration_seconds,omitempty"`
	ProcessingMs  int     `json:"processing_ms"`
}

// Registry is the in-memory job table.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create registers a new pending job for the given upload and returns it.
func (r *Registry) Create(filename, audioKey string) *Job {
	j := &Job{
		ID:        newJobID(),
		Filename:  filename,
		AudioKey:  audioKey,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()
	return j
}

// Get returns a snapshot of the job with the given ID.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

// List returns snapshots of all jobs, newest first.
func (r *Registry) List() []Job {
	r.mu.RLock()
	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SetAudioKey records the storage key of the job's uploaded audio. The key
// embeds the job ID, so it is only known after Create.
func (r *Registry) SetAudioKey(id, audioKey string) {
	r.update(id, func(j *Job) {
		j.AudioKey = audioKey
	})
}

// MarkProcessing transitions a job to processing.
func (r *Registry) MarkProcessing(id string) {
	now := time.Now().UTC()
	r.update(id, func(j *Job) {
		j.Status = StatusProcessing
		j.StartedAt = &now
	})
}

// Complete transitions a job to completed with its result.
func (r *Registry) Complete(id string, res *Result) {
	now := time.Now().UTC()
	r.update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.CompletedAt = &now
		j.Result = res
	})
}

// Fail transitions a job to failed with an error message.
func (r *Registry) Fail(id string, msg string) {
	now := time.Now().UTC()
	r.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.CompletedAt = &now
		j.Error = msg
	})
}

func (r *Registry) update(id string, fn func(*Job)) {
	r.mu.Lock()
	if j, ok := r.jobs[id]; ok {
		fn(j)
	}
	r.mu.Unlock()
}

func newJobID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
