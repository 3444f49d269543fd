package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLocalStore_SaveAndReadBack(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "job1/transcript.txt", []byte("Speaker_1: merhaba\n")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Exists(ctx, "job1/transcript.txt") {
		t.Fatal("saved artifact does not exist")
	}
	data, err := s.ReadAll(ctx, "job1/transcript.txt")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "Speaker_1: merhaba\n" {
		t.Errorf("read back %q", data)
	}
	if s.LocalPath("job1/transcript.txt") == "" {
		t.Error("LocalPath empty for existing artifact")
	}
	if s.LocalPath("job1/missing.txt") != "" {
		t.Error("LocalPath non-empty for missing artifact")
	}
}

func TestLocalStore_SaveStream(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	n, err := s.SaveStream(context.Background(), "job2/audio.wav", strings.NewReader("RIFF data"))
	if err != nil {
		t.Fatalf("SaveStream: %v", err)
	}
	if n != 9 {
		t.Errorf("wrote %d bytes, want 9", n)
	}
	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Join(s.Dir(), "job2"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".artifact-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLocalStore_RemoveMissingIsNil(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if err := s.Remove(context.Background(), "nope/never.txt"); err != nil {
		t.Errorf("Remove missing key: %v", err)
	}
}

func TestPruner_EvictsExpiredArtifacts(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "old/transcript.txt", []byte("stale")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "new/transcript.txt", []byte("fresh")); err != nil {
		t.Fatal(err)
	}

	// Age the old artifact past retention.
	oldPath := filepath.Join(dir, "old", "transcript.txt")
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatal(err)
	}

	p := NewPruner(dir, 24*time.Hour, zerolog.Nop())
	p.prune()

	if s.Exists(ctx, "old/transcript.txt") {
		t.Error("expired artifact survived prune")
	}
	if !s.Exists(ctx, "new/transcript.txt") {
		t.Error("fresh artifact was pruned")
	}
	if _, err := os.Stat(filepath.Join(dir, "old")); !os.IsNotExist(err) {
		t.Error("empty job directory not removed")
	}
}

func TestPruner_ZeroRetentionKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewLocalStore(dir)
	ctx := context.Background()
	s.Save(ctx, "a/x.txt", []byte("x"))

	old := time.Now().Add(-1000 * time.Hour)
	os.Chtimes(filepath.Join(dir, "a", "x.txt"), old, old)

	p := NewPruner(dir, 0, zerolog.Nop())
	p.prune()

	if !s.Exists(ctx, "a/x.txt") {
		t.Error("retention=0 must disable pruning")
	}
}
