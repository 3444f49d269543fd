package align

import "strings"

// RenderTranscript emits the final transcript text: one block per line,
//
//	HH:MM:SS,mmm --> HH:MM:SS,mmm
//	Speaker_N: text
//
// with a blank line between blocks. External consumers depend on this exact
// layout, so changes here are breaking.
func RenderTranscript(lines []AttributedLine) (string, error) {
	var b strings.Builder
	for i, l := range lines {
		start, err := FormatTimestamp(l.Start)
		if err != nil {
			return "", err
		}
		end, err := FormatTimestamp(l.End)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(start)
		b.WriteString(" --> ")
		b.WriteString(end)
		b.WriteString("\n")
		b.WriteString(l.Speaker)
		b.WriteString(": ")
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
