package diarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF fake wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPyannoteClient_Diarize(t *testing.T) {
	var gotMin, gotMax string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotMin = r.FormValue("min_speakers")
		gotMax = r.FormValue("max_speakers")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"turns": [
				{"start": 0, "end": 3.5, "speaker": "SPEAKER_00"},
				{"start": 3.6, "end": 6.8, "speaker": "SPEAKER_01"}
			],
			"num_speakers": 2
		}`))
	}))
	defer srv.Close()

	pc := NewPyannoteClient(srv.URL, 5*time.Second)
	resp, err := pc.Diarize(context.Background(), tempAudio(t), DiarizeOpts{MinSpeakers: 1, MaxSpeakers: 4})
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}

	if gotMin != "1" || gotMax != "4" {
		t.Errorf("speaker hints = %q/%q, want 1/4", gotMin, gotMax)
	}
	if len(resp.Turns) != 2 || resp.NumSpeakers != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Turns[1].Speaker != "SPEAKER_01" {
		t.Errorf("turn 1 speaker = %q", resp.Turns[1].Speaker)
	}
}

func TestPyannoteClient_HintsOmittedWhenZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		if _, ok := r.MultipartForm.Value["min_speakers"]; ok {
			t.Error("min_speakers sent despite zero value")
		}
		w.Write([]byte(`{"turns": [], "num_speakers": 0}`))
	}))
	defer srv.Close()

	pc := NewPyannoteClient(srv.URL, 5*time.Second)
	resp, err := pc.Diarize(context.Background(), tempAudio(t), DiarizeOpts{})
	if err != nil {
		t.Fatalf("Diarize: %v", err)
	}
	if len(resp.Turns) != 0 {
		t.Errorf("got %d turns, want 0", len(resp.Turns))
	}
}

func TestPyannoteClient_SidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model load failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	pc := NewPyannoteClient(srv.URL, 5*time.Second)
	if _, err := pc.Diarize(context.Background(), tempAudio(t), DiarizeOpts{}); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
