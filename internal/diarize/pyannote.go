package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// PyannoteClient calls a pyannote.audio HTTP sidecar. The sidecar wraps the
// gated pyannote speaker-diarization pipeline behind a plain multipart
// endpoint so this service never touches model weights or HF tokens.
type PyannoteClient struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// pyannoteResponse is the sidecar's JSON response.
type pyannoteResponse struct {
	Turns []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker string  `json:"speaker"`
	} `json:"turns"`
	NumSpeakers int `json:"num_speakers"`
}

// NewPyannoteClient creates a new pyannote sidecar client.
func NewPyannoteClient(url string, timeout time.Duration) *PyannoteClient {
	return &PyannoteClient{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (pc *PyannoteClient) Name() string { return "pyannote" }

// Diarize sends an audio file to the sidecar and returns speaker turns.
func (pc *PyannoteClient) Diarize(ctx context.Context, audioPath string, opts DiarizeOpts) (*Response, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	if opts.MinSpeakers > 0 {
		w.WriteField("min_speakers", fmt.Sprintf("%d", opts.MinSpeakers))
	}
	if opts.MaxSpeakers > 0 {
		w.WriteField("max_speakers", fmt.Sprintf("%d", opts.MaxSpeakers))
	}

	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pyannote request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pyannote API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result pyannoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	turns := make([]Turn, 0, len(result.Turns))
	for _, t := range result.Turns {
		turns = append(turns, Turn{Start: t.Start, End: t.End, Speaker: t.Speaker})
	}

	return &Response{Turns: turns, NumSpeakers: result.NumSpeakers}, nil
}
