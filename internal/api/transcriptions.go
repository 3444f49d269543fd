package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pekdemirevren/pod2vid/internal/jobs"
	"github.com/pekdemirevren/pod2vid/internal/storage"
)

// acceptedAudioExtensions guards the upload endpoint. Decoding is the ASR
// collaborator's job; this is only a cheap sanity filter.
var acceptedAudioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// TranscriptionsHandler serves job submission and retrieval.
type TranscriptionsHandler struct {
	registry    *jobs.Registry
	pool        *jobs.WorkerPool
	store       *storage.LocalStore
	maxUploadMB int64
	log         zerolog.Logger
}

// NewTranscriptionsHandler creates the transcription endpoints handler.
func NewTranscriptionsHandler(registry *jobs.Registry, pool *jobs.WorkerPool, store *storage.LocalStore, maxUploadMB int64, log zerolog.Logger) *TranscriptionsHandler {
	return &TranscriptionsHandler{
		registry:    registry,
		pool:        pool,
		store:       store,
		maxUploadMB: maxUploadMB,
		log:         log.With().Str("handler", "transcriptions").Logger(),
	}
}

// Routes registers the transcription endpoints.
func (h *TranscriptionsHandler) Routes(r chi.Router) {
	r.Post("/transcriptions", h.Create)
	r.Get("/transcriptions", h.List)
	r.Get("/transcriptions/{id}", h.Get)
	r.Get("/transcriptions/{id}/transcript", h.Transcript)
}

// Create handles POST /api/v1/transcriptions: a multipart audio upload that
// becomes a queued job. Responds 202 with the job ID; processing is
// asynchronous, poll the job or subscribe to /events.
func (h *TranscriptionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteErrorDetail(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing audio file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = "upload"
	}
	if !acceptedAudioExtensions[strings.ToLower(filepath.Ext(filename))] {
		WriteError(w, http.StatusUnsupportedMediaType, "unsupported audio format")
		return
	}

	job := h.registry.Create(filename, "")
	key := job.ID + "/" + filename
	if _, err := h.store.SaveStream(r.Context(), key, file); err != nil {
		h.registry.Fail(job.ID, "store upload: "+err.Error())
		h.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to store upload")
		WriteError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	h.registry.SetAudioKey(job.ID, key)

	if !h.pool.Enqueue(job.ID) {
		h.registry.Fail(job.ID, "job queue full")
		WriteError(w, http.StatusServiceUnavailable, "job queue full, retry later")
		return
	}

	created, _ := h.registry.Get(job.ID)
	WriteJSON(w, http.StatusAccepted, created)
}

// List handles GET /api/v1/transcriptions.
func (h *TranscriptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	all := h.registry.List()
	total := len(all)

	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  all[start:end],
		"total": total,
	})
}

// Get handles GET /api/v1/transcriptions/{id}.
func (h *TranscriptionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Transcript handles GET /api/v1/transcriptions/{id}/transcript, returning
// the rendered transcript as plain text.
func (h *TranscriptionsHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	job, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != jobs.StatusCompleted || job.Result == nil {
		WriteError(w, http.StatusConflict, "transcript not ready: job is "+string(job.Status))
		return
	}

	f, err := h.store.Open(r.Context(), job.Result.TranscriptKey)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", job.ID).Msg("transcript artifact missing")
		WriteError(w, http.StatusGone, "transcript artifact no longer available")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	// Heuristic labels are low-confidence; make that visible to consumers
	// that only fetch the text.
	w.Header().Set("X-Label-Source", job.Result.LabelSource)
	io.Copy(w, f)
}
