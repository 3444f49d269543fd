package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF fake wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWhisperClient_Transcribe(t *testing.T) {
	var gotFormat, gotGranularity, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotFormat = r.FormValue("response_format")
		gotGranularity = r.FormValue("timestamp_granularities[]")
		gotLang = r.FormValue("language")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "Merhaba. Teşekkürler.",
			"language": "tr",
			"duration": 6.8,
			"segments": [
				{"start": 0, "end": 3.5, "text": "Merhaba."},
				{"start": 3.6, "end": 6.8, "text": "Teşekkürler."}
			]
		}`))
	}))
	defer srv.Close()

	wc := NewWhisperClient(srv.URL, "base", 5*time.Second)
	resp, err := wc.Transcribe(context.Background(), writeTempAudio(t), TranscribeOpts{Language: "tr"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if gotFormat != "verbose_json" {
		t.Errorf("response_format = %q, want verbose_json", gotFormat)
	}
	if gotGranularity != "segment" {
		t.Errorf("granularity = %q, want segment", gotGranularity)
	}
	if gotLang != "tr" {
		t.Errorf("language = %q, want tr", gotLang)
	}
	if len(resp.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(resp.Segments))
	}
	if resp.Segments[1].Start != 3.6 || resp.Segments[1].End != 6.8 {
		t.Errorf("segment 1 = %+v", resp.Segments[1])
	}
	if resp.Language != "tr" || resp.Duration != 6.8 {
		t.Errorf("response meta = %q/%v", resp.Language, resp.Duration)
	}
}

func TestWhisperClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not loaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	wc := NewWhisperClient(srv.URL, "base", 5*time.Second)
	if _, err := wc.Transcribe(context.Background(), writeTempAudio(t), TranscribeOpts{}); err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestWhisperClient_MissingFile(t *testing.T) {
	wc := NewWhisperClient("http://localhost:0", "base", time.Second)
	if _, err := wc.Transcribe(context.Background(), "/no/such/file.wav", TranscribeOpts{}); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}
