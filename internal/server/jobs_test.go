package server

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samaahar/podcast-gateway/internal/audio"
	"github.com/samaahar/podcast-gateway/internal/podcast"
	"github.com/samaahar/podcast-gateway/internal/wiki"
)

func storedResult() *podcast.Result {
	return &podcast.Result{
		Article: &wiki.Article{Title: "ISRO"},
		Artifact: &audio.Artifact{
			WAV:       []byte("RIFF"),
			Duration:  time.Minute,
			TurnCount: 4,
		},
	}
}

func TestJobStore_EvictsOldestFinished(t *testing.T) {
	store := NewJobStore()

	total := maxFinishedJobs + 10
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("job-%d", i)
		store.Create(id, "isro", "", "Adults", "casual")
		store.Complete(id, storedResult())
	}

	if _, ok := store.Get("job-0"); ok {
		t.Error("Expected the oldest finished job to be evicted")
	}
	if _, ok := store.Get(fmt.Sprintf("job-%d", total-1)); !ok {
		t.Error("Expected the newest job to survive eviction")
	}

	finished := 0
	for i := 0; i < total; i++ {
		if job, ok := store.Get(fmt.Sprintf("job-%d", i)); ok && job.Status == JobDone {
			finished++
		}
	}
	if finished > maxFinishedJobs {
		t.Errorf("Expected at most %d finished jobs retained, got %d", maxFinishedJobs, finished)
	}
}

func TestJobStore_NeverEvictsInFlightJobs(t *testing.T) {
	store := NewJobStore()

	// Oldest job stays running while finished jobs flood past the cap
	store.Create("running", "isro", "", "Adults", "casual")
	store.SetRunning("running")

	for i := 0; i < maxFinishedJobs+10; i++ {
		id := fmt.Sprintf("job-%d", i)
		store.Create(id, "isro", "", "Adults", "casual")
		store.Fail(id, errors.New("provider down"))
	}

	job, ok := store.Get("running")
	if !ok {
		t.Fatal("Expected in-flight job to survive eviction")
	}
	if job.Status != JobRunning {
		t.Errorf("Expected running status, got '%s'", job.Status)
	}
}

func TestJobStore_EvictedJobDropsAudio(t *testing.T) {
	store := NewJobStore()

	store.Create("old", "isro", "", "Adults", "casual")
	store.Complete("old", storedResult())

	for i := 0; i < maxFinishedJobs+1; i++ {
		id := fmt.Sprintf("job-%d", i)
		store.Create(id, "isro", "", "Adults", "casual")
		store.Complete(id, storedResult())
	}

	if _, ok := store.Result("old"); ok {
		t.Error("Expected evicted job's audio to be released")
	}
}
