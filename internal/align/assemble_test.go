package align

import "testing"

func TestMergeLines_StitchesSameSpeaker(t *testing.T) {
	lines := []AttributedLine{
		{Start: 0, End: 2.0, Speaker: "Speaker_1", Text: "hello"},
		{Start: 2.1, End: 4.0, Speaker: "Speaker_1", Text: "again"},
	}
	merged := MergeLines(lines, DefaultOptions())
	if len(merged) != 1 {
		t.Fatalf("got %d lines, want 1", len(merged))
	}
	m := merged[0]
	if m.Start != 0 || m.End != 4.0 {
		t.Errorf("merged span = [%f, %f], want [0, 4]", m.Start, m.End)
	}
	if m.Text != "hello again" {
		t.Errorf("merged text = %q, want %q", m.Text, "hello again")
	}
}

func TestMergeLines_DifferentSpeakersStayApart(t *testing.T) {
	lines := []AttributedLine{
		{Start: 0, End: 2.0, Speaker: "Speaker_1", Text: "hello"},
		{Start: 2.1, End: 4.0, Speaker: "Speaker_2", Text: "hi"},
	}
	if merged := MergeLines(lines, DefaultOptions()); len(merged) != 2 {
		t.Fatalf("got %d lines, want 2", len(merged))
	}
}

func TestMergeLines_GapThreshold(t *testing.T) {
	lines := []AttributedLine{
		{Start: 0, End: 2.0, Speaker: "Speaker_1", Text: "hello"},
		{Start: 2.5, End: 4.0, Speaker: "Speaker_1", Text: "again"}, // 0.5s > 0.3s
	}
	if merged := MergeLines(lines, DefaultOptions()); len(merged) != 2 {
		t.Fatalf("got %d lines, want 2 (gap exceeds threshold)", len(merged))
	}
}

func TestMergeLines_MaxDurationCapsRuns(t *testing.T) {
	// Three abutting lines from one speaker, 4s each: the third would push
	// the block past 10s, so it starts a fresh line.
	lines := []AttributedLine{
		{Start: 0, End: 4, Speaker: "Speaker_1", Text: "a"},
		{Start: 4, End: 8, Speaker: "Speaker_1", Text: "b"},
		{Start: 8, End: 12, Speaker: "Speaker_1", Text: "c"},
	}
	merged := MergeLines(lines, DefaultOptions())
	if len(merged) != 2 {
		t.Fatalf("got %d lines, want 2", len(merged))
	}
	if merged[0].Text != "a b" || merged[1].Text != "c" {
		t.Errorf("texts = %q, %q; want %q, %q", merged[0].Text, merged[1].Text, "a b", "c")
	}
}

func TestMergeLines_PreservesOrder(t *testing.T) {
	lines := []AttributedLine{
		{Start: 0, End: 1, Speaker: "Speaker_1", Text: "a"},
		{Start: 2, End: 3, Speaker: "Speaker_2", Text: "b"},
		{Start: 4, End: 5, Speaker: "Speaker_1", Text: "c"},
	}
	merged := MergeLines(lines, DefaultOptions())
	for i := 1; i < len(merged); i++ {
		if merged[i].Start < merged[i-1].Start {
			t.Errorf("output out of order at %d", i)
		}
	}
}

func TestMergeLines_Empty(t *testing.T) {
	if got := MergeLines(nil, DefaultOptions()); got != nil {
		t.Errorf("MergeLines(nil) = %v, want nil", got)
	}
}
