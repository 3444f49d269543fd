package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// soxAvailable caches whether sox is in PATH (checked once at startup).
var soxAvailable *bool

// CheckSox checks if sox is available in PATH. Call once at startup.
func CheckSox() bool {
	if soxAvailable != nil {
		return *soxAvailable
	}
	_, err := exec.LookPath("sox")
	avail := err == nil
	soxAvailable = &avail
	return avail
}

// Preprocess applies audio cleanup for Whisper using sox:
//   - Resample to 16kHz mono (Whisper's native input rate)
//   - Normalize volume for consistent decoding across recordings
//
// Returns the path to a temporary WAV file and a cleanup function.
// If sox is unavailable, returns the original path with a no-op cleanup.
func Preprocess(ctx context.Context, inputPath string) (string, func(), error) {
	noop := func() {}

	if !CheckSox() {
		return inputPath, noop, nil
	}

	outPath, err := preprocessTemp()
	if err != nil {
		return inputPath, noop, fmt.Errorf("preprocess temp: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sox",
		inputPath, outPath,
		"rate", "16000",
		"channels", "1",
		"norm",
	)
	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return inputPath, noop, fmt.Errorf("sox preprocess: %w", err)
	}

	cleanup := func() {
		os.Remove(outPath)
	}
	return outPath, cleanup, nil
}

// preprocessTemp reserves a unique output file for one sox run. Workers
// preprocess concurrently, so the path must be unique per call, not per
// process.
func preprocessTemp() (string, error) {
	f, err := os.CreateTemp("", "pod2vid-preprocess-*.wav")
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}
