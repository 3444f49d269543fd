package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry()
	j := r.Create("podcast.mp3", "abc/audio.mp3")
	if j.ID == "" {
		t.Fatal("job ID empty")
	}
	if j.Status != StatusPending {
		t.Errorf("status = %q, want pending", j.Status)
	}

	got, err := r.Get(j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Filename != "podcast.mp3" || got.AudioKey != "abc/audio.mp3" {
		t.Errorf("got %+v", got)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRegistry_Transitions(t *testing.T) {
	r := NewRegistry()
	j := r.Create("a.wav", "k")

	r.MarkProcessing(j.ID)
	got, _ := r.Get(j.ID)
	if got.Status != StatusProcessing || got.StartedAt == nil {
		t.Errorf("after MarkProcessing: %+v", got)
	}

	res := &Result{Lines: 3, Speakers: 2, LabelSource: SourceDiarization}
	r.Complete(j.ID, res)
	got, _ = r.Get(j.ID)
	if got.Status != StatusCompleted || got.CompletedAt == nil {
		t.Errorf("after Complete: %+v", got)
	}
	if got.Result == nil || got.Result.Speakers != 2 {
		t.Errorf("result = %+v", got.Result)
	}
}

func TestRegistry_Fail(t *testing.T) {
	r := NewRegistry()
	j := r.Create("a.wav", "k")
	r.Fail(j.ID, "whisper: connection refused")
	got, _ := r.Get(j.ID)
	if got.Status != StatusFailed || got.Error == "" {
		t.Errorf("after Fail: %+v", got)
	}
}

func TestRegistry_ListNewestFirst(t *testing.T) {
	r := NewRegistry()
	first := r.Create("first.wav", "k1")
	time.Sleep(2 * time.Millisecond)
	second := r.Create("second.wav", "k2")

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("got %d jobs, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = %s, %s; want newest first", list[0].Filename, list[1].Filename)
	}
}
