package transcribe

import "context"

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOpts) (*Response, error)
	Name() string  // "whisper"
	Model() string // model identifier for logs
}

// Response is the common transcription result from any provider.
type Response struct {
	Text     string
	Language string
	Duration float64 // audio duration in seconds
	Segments []Segment
}

// Segment is a timed text span from the STT provider. The alignment core
// consumes these as its TextSegment input.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// TranscribeOpts are per-request options. Zero-value fields are omitted from
// the request, so this works with any OpenAI-compatible server.
type TranscribeOpts struct {
	Temperature float64
	Language    string
	Prompt      string // initial_prompt / domain vocabulary
}
