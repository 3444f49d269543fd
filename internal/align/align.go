package align

import "fmt"

// Aligner assigns a display speaker label to every text segment by overlap
// against speaker turns. It also owns the opaque-ID → display-label table:
// raw diarization cluster identifiers never leave this package; labels are
// Speaker_1, Speaker_2, ... assigned in order of first appearance and stable
// for the lifetime of the Aligner (one transcription job).
type Aligner struct {
	turns  []SpeakerTurn
	labels map[string]string
	next   int
}

// NewAligner creates an aligner over normalized turns. Turns must be
// non-empty; callers without diarization supply FallbackTurns output.
func NewAligner(turns []SpeakerTurn) *Aligner {
	return &Aligner{
		turns:  turns,
		labels: make(map[string]string),
	}
}

// Label returns the stable display label for an opaque speaker identifier,
// assigning the next ordinal on first sight.
func (a *Aligner) Label(speakerID string) string {
	if l, ok := a.labels[speakerID]; ok {
		return l
	}
	a.next++
	l := fmt.Sprintf("Speaker_%d", a.next)
	a.labels[speakerID] = l
	return l
}

// Speakers returns the number of distinct speakers labeled so far.
func (a *Aligner) Speakers() int { return a.next }

// Align produces one AttributedLine per segment (1:1, in input order). Every
// segment gets exactly one label: the turn with maximum overlap wins, ties
// go to the earlier-starting turn, and a segment overlapping no turn at all
// falls back to the turn whose start is nearest its own (earlier turn on
// exact distance ties). Align never fails on normalized non-empty input.
//
// The scan is O(segments × turns); transcript-sized inputs make anything
// fancier pointless.
func (a *Aligner) Align(segments []TextSegment) []AttributedLine {
	lines := make([]AttributedLine, len(segments))
	for i, s := range segments {
		t := a.bestTurn(s)
		lines[i] = AttributedLine{
			Start:   s.Start,
			End:     s.End,
			Speaker: a.Label(t.SpeakerID),
			Text:    s.Text,
		}
	}
	return lines
}

func (a *Aligner) bestTurn(s TextSegment) SpeakerTurn {
	bestIdx := -1
	bestOverlap := 0.0
	for i, t := range a.turns {
		ov := overlap(s, t)
		if ov <= 0 {
			continue
		}
		// Strict > keeps the earlier turn on ties: turns are sorted by start.
		if bestIdx == -1 || ov > bestOverlap {
			bestIdx = i
			bestOverlap = ov
		}
	}
	if bestIdx >= 0 {
		return a.turns[bestIdx]
	}

	// No overlap anywhere (gap at the transcript edge or across a heuristic
	// pause boundary): nearest turn by start distance, earlier turn on ties.
	bestIdx = 0
	bestDist := abs(s.Start - a.turns[0].Start)
	for i := 1; i < len(a.turns); i++ {
		if d := abs(s.Start - a.turns[i].Start); d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return a.turns[bestIdx]
}

// overlap is the shared duration of a segment and a turn, zero when disjoint.
func overlap(s TextSegment, t SpeakerTurn) float64 {
	lo := s.Start
	if t.Start > lo {
		lo = t.Start
	}
	hi := s.End
	if t.End < hi {
		hi = t.End
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
