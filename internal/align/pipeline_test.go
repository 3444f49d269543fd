package align

import (
	"errors"
	"strings"
	"testing"
)

// Two Turkish podcast segments used across the end-to-end cases.
func podcastSegments() []TextSegment {
	return []TextSegment{
		{Start: 0, End: 3.5, Text: "Merhaba"},
		{Start: 3.6, End: 6.8, Text: "Teşekkürler"},
	}
}

func TestAssemble_TwoSpeakersFromDiarization(t *testing.T) {
	turns := []SpeakerTurn{
		{Start: 0, End: 3.5, SpeakerID: "A"},
		{Start: 3.6, End: 6.8, SpeakerID: "B"},
	}
	tr, err := Assemble(podcastSegments(), turns, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tr.Heuristic {
		t.Error("Heuristic = true with real diarization turns")
	}
	if tr.Speakers != 2 {
		t.Errorf("Speakers = %d, want 2", tr.Speakers)
	}
	if len(tr.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(tr.Lines))
	}
	if tr.Lines[0].Speaker != "Speaker_1" || tr.Lines[1].Speaker != "Speaker_2" {
		t.Errorf("labels = %q, %q; want Speaker_1, Speaker_2", tr.Lines[0].Speaker, tr.Lines[1].Speaker)
	}

	out, err := RenderTranscript(tr.Lines)
	if err != nil {
		t.Fatalf("RenderTranscript: %v", err)
	}
	want := "00:00:00,000 --> 00:00:03,500\n" +
		"Speaker_1: Merhaba\n" +
		"\n" +
		"00:00:03,600 --> 00:00:06,800\n" +
		"Speaker_2: Teşekkürler\n"
	if out != want {
		t.Errorf("rendered transcript:\n%q\nwant:\n%q", out, want)
	}
}

func TestAssemble_NoDiarizationShortGap(t *testing.T) {
	// 0.1s gap < τ: one fallback run, a single speaker throughout.
	tr, err := Assemble(podcastSegments(), nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !tr.Heuristic {
		t.Error("Heuristic = false, want true when no turns supplied")
	}
	if tr.Speakers != 1 {
		t.Errorf("Speakers = %d, want 1", tr.Speakers)
	}
	for _, l := range tr.Lines {
		if l.Speaker != "Speaker_1" {
			t.Errorf("speaker = %q, want Speaker_1", l.Speaker)
		}
	}
}

func TestAssemble_NoDiarizationPauseSplits(t *testing.T) {
	segs := []TextSegment{
		{Start: 0, End: 2.0, Text: "Birinci konuşmacı"},
		{Start: 4.0, End: 6.0, Text: "İkinci konuşmacı"}, // 2.0s gap > τ
	}
	tr, err := Assemble(segs, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(tr.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(tr.Lines))
	}
	if tr.Lines[0].Speaker != "Speaker_1" || tr.Lines[1].Speaker != "Speaker_2" {
		t.Errorf("labels = %q, %q; want Speaker_1, Speaker_2", tr.Lines[0].Speaker, tr.Lines[1].Speaker)
	}
}

func TestAssemble_BoundarySegmentFollowsGreaterOverlap(t *testing.T) {
	turns := []SpeakerTurn{
		{Start: 0, End: 4, SpeakerID: "A"},
		{Start: 4, End: 10, SpeakerID: "B"},
	}
	segs := []TextSegment{
		{Start: 0, End: 2, Text: "opening"},  // firmly in A
		{Start: 3, End: 7, Text: "boundary"}, // 1s in A, 3s in B
	}
	tr, err := Assemble(segs, turns, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tr.Lines[1].Speaker != "Speaker_2" {
		t.Errorf("boundary speaker = %q, want Speaker_2 (greater overlap, not earlier turn)", tr.Lines[1].Speaker)
	}
}

func TestAssemble_EmptySegmentsFails(t *testing.T) {
	if _, err := Assemble(nil, nil, DefaultOptions()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAssemble_OrderingInvariant(t *testing.T) {
	segs := []TextSegment{
		{Start: 7.0, End: 8.0, Text: "d"},
		{Start: 0.0, End: 1.0, Text: "a"},
		{Start: 5.0, End: 6.5, Text: "c"},
		{Start: 1.2, End: 2.0, Text: "b"},
	}
	tr, err := Assemble(segs, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for i := 1; i < len(tr.Lines); i++ {
		if tr.Lines[i].Start < tr.Lines[i-1].Start {
			t.Fatalf("lines out of order at %d: %v", i, tr.Lines)
		}
	}
	var joined []string
	for _, l := range tr.Lines {
		joined = append(joined, l.Text)
	}
	if got := strings.Join(joined, "|"); !strings.Contains(got, "a") || !strings.Contains(got, "d") {
		t.Errorf("text lost in assembly: %q", got)
	}
}

func TestAssemble_MergesAdjacentSameSpeaker(t *testing.T) {
	turns := []SpeakerTurn{{Start: 0, End: 10, SpeakerID: "A"}}
	segs := []TextSegment{
		{Start: 0, End: 2.0, Text: "merhaba"},
		{Start: 2.1, End: 4.0, Text: "dinleyiciler"},
	}
	tr, err := Assemble(segs, turns, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(tr.Lines) != 1 {
		t.Fatalf("got %d lines, want 1 merged line", len(tr.Lines))
	}
	if tr.Lines[0].Text != "merhaba dinleyiciler" {
		t.Errorf("merged text = %q", tr.Lines[0].Text)
	}
}
