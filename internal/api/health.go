package api

import (
	"net/http"
	"time"

	"github.com/pekdemirevren/pod2vid/internal/jobs"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string          `json:"status"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Queue         jobs.QueueStats `json:"queue"`
	Diarization   bool            `json:"diarization_enabled"`
}

// HealthHandler reports service liveness and queue state.
type HealthHandler struct {
	pool           *jobs.WorkerPool
	version        string
	startTime      time.Time
	diarizeEnabled bool
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(pool *jobs.WorkerPool, version string, startTime time.Time, diarizeEnabled bool) *HealthHandler {
	return &HealthHandler{
		pool:           pool,
		version:        version,
		startTime:      startTime,
		diarizeEnabled: diarizeEnabled,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Queue:         h.pool.Stats(),
		Diarization:   h.diarizeEnabled,
	})
}
