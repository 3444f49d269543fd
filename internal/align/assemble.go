package align

// MergeLines stitches consecutive same-speaker lines into readable blocks.
// Two adjacent lines merge when they share a label, the gap between them is
// below opts.MergeGap, and the merged line would not exceed
// opts.MaxLineDuration. Text is joined with a single space. Lines that do
// not merge pass through unchanged, so ordering by start is preserved and
// no input line is ever split.
func MergeLines(lines []AttributedLine, opts Options) []AttributedLine {
	if len(lines) == 0 {
		return nil
	}

	merged := make([]AttributedLine, 0, len(lines))
	cur := lines[0]

	for i := 1; i < len(lines); i++ {
		next := lines[i]
		gap := next.Start - cur.End
		if next.Speaker == cur.Speaker &&
			gap < opts.MergeGap &&
			next.End-cur.Start <= opts.MaxLineDuration {
			cur.End = next.End
			cur.Text += " " + next.Text
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}
