package align

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm, the subtitle timestamp
// convention. Milliseconds are truncated, not rounded, and hours are not
// capped at 99. Negative input returns ErrNegativeTimestamp.
func FormatTimestamp(seconds float64) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("%w: %f", ErrNegativeTimestamp, seconds)
	}
	// Round at microsecond precision first so float artifacts (8.2s stored
	// as 8.199999...) don't leak into the output, then truncate the
	// sub-millisecond remainder.
	totalMs := int64(math.Round(seconds*1e6)) / 1000
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms), nil
}

// ParseTimestamp is the inverse of FormatTimestamp. Round-tripping a value
// through Format then Parse recovers it within one millisecond.
func ParseTimestamp(ts string) (float64, error) {
	hms, msPart, ok := strings.Cut(strings.TrimSpace(ts), ",")
	if !ok {
		return 0, fmt.Errorf("malformed timestamp %q: missing millisecond separator", ts)
	}
	parts := strings.Split(hms, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q: want HH:MM:SS,mmm", ts)
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	s, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	if h < 0 || m < 0 || m > 59 || s < 0 || s > 59 || ms < 0 || ms > 999 {
		return 0, fmt.Errorf("timestamp %q out of range", ts)
	}
	return float64(h*3600+m*60+s) + float64(ms)/1000, nil
}
