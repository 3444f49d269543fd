package align

import "fmt"

// FallbackTurns synthesizes speaker turns from pause structure when no
// diarization is available. This is a heuristic, not detection: it infers a
// probable speaker change whenever the silence between consecutive segments
// exceeds opts.PauseThreshold, cycling through opts.MaxFallbackSpeakers
// speaker slots round-robin. Callers must surface the lower confidence of
// these labels (see jobs.Result.LabelSource).
//
// Segments must already be normalized (sorted, non-degenerate). The output
// is deterministic: one turn per speaker-run, spanning the run's first
// segment start to its last segment end.
func FallbackTurns(segments []TextSegment, opts Options) []SpeakerTurn {
	if len(segments) == 0 {
		return nil
	}

	maxSpeakers := opts.MaxFallbackSpeakers
	if maxSpeakers < 1 {
		maxSpeakers = 1
	}

	var turns []SpeakerTurn
	speaker := 0 // index into the round-robin
	cur := SpeakerTurn{
		Start:     segments[0].Start,
		End:       segments[0].End,
		SpeakerID: fallbackID(speaker),
	}

	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		if gap > opts.PauseThreshold {
			// Probable speaker change: close the current run.
			turns = append(turns, cur)
			speaker = (speaker + 1) % maxSpeakers
			cur = SpeakerTurn{
				Start:     segments[i].Start,
				End:       segments[i].End,
				SpeakerID: fallbackID(speaker),
			}
			continue
		}
		if segments[i].End > cur.End {
			cur.End = segments[i].End
		}
	}
	return append(turns, cur)
}

func fallbackID(i int) string {
	return fmt.Sprintf("HEURISTIC_%02d", i)
}
