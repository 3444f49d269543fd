package diarize

import "context"

// Provider is the interface for speaker-diarization backends.
//
// Diarization is best-effort in this system: a provider error or an empty
// turn list both mean "no diarization available" downstream, which routes
// the job through the pause-based fallback heuristic instead of failing it.
type Provider interface {
	Diarize(ctx context.Context, audioPath string, opts DiarizeOpts) (*Response, error)
	Name() string // "pyannote"
}

// DiarizeOpts are per-request hints for the diarization backend.
type DiarizeOpts struct {
	// MinSpeakers / MaxSpeakers bound the clustering (0 = backend default).
	MinSpeakers int
	MaxSpeakers int
}

// Response holds the speaker turns produced by a diarization backend.
// Speaker identifiers are opaque cluster tokens (e.g. "SPEAKER_00"); their
// value space and stability belong to the backend and must not be shown to
// users.
type Response struct {
	Turns       []Turn
	NumSpeakers int
}

// Turn is a contiguous interval attributed to one speaker.
type Turn struct {
	Start   float64
	End     float64
	Speaker string
}
