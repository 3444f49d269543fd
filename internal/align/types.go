package align

import "errors"

// Sentinel errors for the alignment core.
var (
	// ErrInvalidInput indicates empty or malformed transcription input.
	// No partial output is produced when this is returned.
	ErrInvalidInput = errors.New("invalid transcription input")

	// ErrNegativeTimestamp indicates a negative seconds value reached the
	// timestamp formatter. The normalizers guarantee this cannot happen for
	// well-formed input, so seeing it means an upstream invariant broke.
	ErrNegativeTimestamp = errors.New("negative timestamp")
)

// TextSegment is a timed text span from the speech-to-text collaborator.
// Times are seconds from the start of the audio.
type TextSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SpeakerTurn is a contiguous interval attributed to one speaker, either by
// the diarization collaborator or synthesized by the fallback heuristic.
// SpeakerID is an opaque token (diarization cluster index, heuristic ordinal);
// it is never exposed externally (see Aligner label mapping).
type SpeakerTurn struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id"`
}

// AttributedLine is the atomic unit of final output: one labeled, timestamped
// transcript line. Before merging, lines map 1:1 onto input segments.
type AttributedLine struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// Options holds the tunable knobs of the core. All four are caller
// configuration; the zero value is not usable, start from DefaultOptions.
type Options struct {
	// PauseThreshold is the silence gap (seconds) that the fallback
	// heuristic treats as a probable speaker change.
	PauseThreshold float64

	// MaxFallbackSpeakers caps the round-robin speaker count used by the
	// fallback heuristic.
	MaxFallbackSpeakers int

	// MergeGap is the largest gap (seconds) across which the assembler will
	// stitch adjacent same-speaker lines together.
	MergeGap float64

	// MaxLineDuration bounds the duration of a merged line so a long
	// monologue does not collapse into one block.
	MaxLineDuration float64
}

// DefaultOptions returns the documented default tuning.
func DefaultOptions() Options {
	return Options{
		PauseThreshold:      1.5,
		MaxFallbackSpeakers: 2,
		MergeGap:            0.3,
		MaxLineDuration:     10.0,
	}
}
