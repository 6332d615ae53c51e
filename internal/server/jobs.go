package server

import (
	"sync"
	"time"

	"github.com/samaahar/podcast-gateway/internal/podcast"
)

// JobStatus is the lifecycle state of a generation job
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is the public view of one generation job
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Topic     string    `json:"topic,omitempty"`
	Title     string    `json:"title,omitempty"`
	Audience  string    `json:"audience"`
	Tone      string    `json:"tone"`
	CreatedAt time.Time `json:"created_at"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`

	// Set once the job is done
	ArticleTitle    string  `json:"article_title,omitempty"`
	ArticleURL      string  `json:"article_url,omitempty"`
	TurnCount       int     `json:"turn_count,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Transcript      string  `json:"transcript,omitempty"`
}

type jobState struct {
	job    Job
	result *podcast.Result
	events []podcast.Event
	subs   map[chan podcast.Event]struct{}
	closed bool
}

// maxFinishedJobs caps how many done or failed jobs the store retains.
// Each finished job holds a complete WAV in memory, so the oldest finished
// jobs are evicted beyond this. In-flight jobs are never evicted.
const maxFinishedJobs = 100

// JobStore tracks in-flight and finished jobs in memory. Artifacts are never
// written to disk; finished jobs live until evicted by the retention cap.
type JobStore struct {
	mu    sync.RWMutex
	jobs  map[string]*jobState
	order []string // Job IDs in creation order, for eviction
}

// NewJobStore creates an empty job store
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*jobState)}
}

// Create registers a new pending job
func (s *JobStore) Create(id, topic, title, audience, tone string) Job {
	job := Job{
		ID:        id,
		Status:    JobPending,
		Topic:     topic,
		Title:     title,
		Audience:  audience,
		Tone:      tone,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[id] = &jobState{
		job:  job,
		subs: make(map[chan podcast.Event]struct{}),
	}
	s.order = append(s.order, id)
	s.mu.Unlock()

	return job
}

// SetRunning marks a job as running
func (s *JobStore) SetRunning(id string) {
	s.mu.Lock()
	if state, ok := s.jobs[id]; ok {
		state.job.Status = JobRunning
	}
	s.mu.Unlock()
}

// Publish records a progress event and fans it out to subscribers. Slow
// subscribers miss events rather than blocking the pipeline.
func (s *JobStore) Publish(id string, event podcast.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.jobs[id]
	if !ok || state.closed {
		return
	}

	state.events = append(state.events, event)
	for ch := range state.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Complete marks a job as done and stores its result
func (s *JobStore) Complete(id string, result *podcast.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.jobs[id]
	if !ok {
		return
	}

	state.job.Status = JobDone
	state.job.ArticleTitle = result.Article.Title
	state.job.ArticleURL = result.Article.URL
	state.job.TurnCount = result.Artifact.TurnCount
	state.job.DurationSeconds = result.Artifact.Duration.Seconds()
	if result.Script != nil {
		state.job.Transcript = result.Script.Render()
	}
	state.result = result

	s.closeSubs(state)
	s.evictLocked()
}

// Fail marks a job as failed with a classified error
func (s *JobStore) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.jobs[id]
	if !ok {
		return
	}

	state.job.Status = JobFailed
	state.job.Error = err.Error()
	state.job.ErrorKind = podcast.ErrorKind(err)

	s.closeSubs(state)
	s.evictLocked()
}

// evictLocked drops the oldest finished jobs beyond the retention cap.
// Callers hold s.mu.
func (s *JobStore) evictLocked() {
	finished := 0
	for _, state := range s.jobs {
		if state.job.Status == JobDone || state.job.Status == JobFailed {
			finished++
		}
	}
	if finished <= maxFinishedJobs {
		return
	}

	kept := s.order[:0]
	for _, id := range s.order {
		state, ok := s.jobs[id]
		if !ok {
			continue
		}
		if finished > maxFinishedJobs && (state.job.Status == JobDone || state.job.Status == JobFailed) {
			delete(s.jobs, id)
			finished--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// closeSubs closes all subscriber channels. Callers hold s.mu.
func (s *JobStore) closeSubs(state *jobState) {
	state.closed = true
	for ch := range state.subs {
		close(ch)
		delete(state.subs, ch)
	}
}

// Get returns the public view of a job
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return state.job, true
}

// Result returns the finished result for a done job
func (s *JobStore) Result(id string) (*podcast.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.jobs[id]
	if !ok || state.result == nil {
		return nil, false
	}
	return state.result, true
}

// Subscribe returns the event history so far plus a live channel. The channel
// is closed when the job finishes; cancel detaches a still-listening
// subscriber early.
func (s *JobStore) Subscribe(id string) (history []podcast.Event, live <-chan podcast.Event, cancel func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.jobs[id]
	if !exists {
		return nil, nil, nil, false
	}

	history = make([]podcast.Event, len(state.events))
	copy(history, state.events)

	ch := make(chan podcast.Event, 16)
	if state.closed {
		close(ch)
		return history, ch, func() {}, true
	}

	state.subs[ch] = struct{}{}
	cancel = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, still := state.subs[ch]; still {
			close(ch)
			delete(state.subs, ch)
		}
	}

	return history, ch, cancel, true
}
