package align

import (
	"fmt"
	"sort"
	"strings"
)

// NormalizeSegments validates and orders raw ASR segments. Segments with
// end <= start or empty text are dropped, the rest are sorted by start
// (ties by end). An empty result is an error: a transcript needs at least
// one segment.
//
// Both collaborator timelines are treated as untrusted: no sortedness or
// non-overlap is assumed from the source.
func NormalizeSegments(raw []TextSegment) ([]TextSegment, error) {
	segs := make([]TextSegment, 0, len(raw))
	for _, s := range raw {
		if s.End <= s.Start || s.Start < 0 {
			continue
		}
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		s.Text = strings.TrimSpace(s.Text)
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: no usable text segments", ErrInvalidInput)
	}
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].Start != segs[j].Start {
			return segs[i].Start < segs[j].Start
		}
		return segs[i].End < segs[j].End
	})
	return segs, nil
}

// NormalizeTurns validates and orders raw diarization turns. Degenerate
// turns (end <= start, negative start) are dropped and the rest sorted by
// start then end. An empty result is NOT an error; it is the "no
// diarization available" signal that routes the job through the fallback
// heuristic.
func NormalizeTurns(raw []SpeakerTurn) []SpeakerTurn {
	turns := make([]SpeakerTurn, 0, len(raw))
	for _, t := range raw {
		if t.End <= t.Start || t.Start < 0 {
			continue
		}
		turns = append(turns, t)
	}
	sort.SliceStable(turns, func(i, j int) bool {
		if turns[i].Start != turns[j].Start {
			return turns[i].Start < turns[j].Start
		}
		return turns[i].End < turns[j].End
	})
	return turns
}
