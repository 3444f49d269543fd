// Package align reconciles two independently timed signals, ASR text
// segments and diarization speaker turns, into one ordered sequence of
// speaker-labeled transcript lines. It is pure computation: no I/O, no
// shared state, safe to run concurrently across jobs.
package align

// Transcript is the assembled output of one job.
type Transcript struct {
	Lines    []AttributedLine
	Speakers int
	// Heuristic is true when no diarization turns were available and the
	// labels came from the pause-based fallback. Callers must surface this:
	// heuristic labels are plausible, not acoustic.
	Heuristic bool
}

// Assemble runs the full core: normalize both inputs, synthesize fallback
// turns if diarization yielded nothing, label every segment, and merge
// adjacent same-speaker lines. Returns ErrInvalidInput (wrapped) when the
// segment input is empty or entirely degenerate; an empty turn input is a
// valid state, never an error.
func Assemble(rawSegments []TextSegment, rawTurns []SpeakerTurn, opts Options) (*Transcript, error) {
	segments, err := NormalizeSegments(rawSegments)
	if err != nil {
		return nil, err
	}

	turns := NormalizeTurns(rawTurns)
	heuristic := false
	if len(turns) == 0 {
		turns = FallbackTurns(segments, opts)
		heuristic = true
	}

	aligner := NewAligner(turns)
	lines := aligner.Align(segments)

	return &Transcript{
		Lines:     MergeLines(lines, opts),
		Speakers:  aligner.Speakers(),
		Heuristic: heuristic,
	}, nil
}
