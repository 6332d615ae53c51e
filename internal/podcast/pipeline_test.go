package podcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samaahar/podcast-gateway/internal/config"
	"github.com/samaahar/podcast-gateway/internal/script"
	"github.com/samaahar/podcast-gateway/internal/tts"
	"github.com/samaahar/podcast-gateway/internal/wiki"
)

type fakeSource struct {
	searchResults []wiki.SearchResult
	searchErr     error
	article       *wiki.Article
	fetchErr      error

	mu           sync.Mutex
	searchCalls  int
	fetchedTitle string
}

func (f *fakeSource) Search(ctx context.Context, query string, limit int) ([]wiki.SearchResult, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	return f.searchResults, f.searchErr
}

func (f *fakeSource) Fetch(ctx context.Context, title string) (*wiki.Article, error) {
	f.mu.Lock()
	f.fetchedTitle = title
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.article, nil
}

type fakeWriter struct {
	raw string
	err error
}

func (f *fakeWriter) Generate(ctx context.Context, article *wiki.Article, audience script.Audience, tone script.Tone, durationSeconds int) (string, error) {
	return f.raw, f.err
}

func (f *fakeWriter) ProviderName() string { return "fake" }

// fakeSynth returns per-turn PCM via fn, or blocks until ctx cancellation
// when block is set
type fakeSynth struct {
	fn    func(text string, voice tts.Voice) ([]byte, error)
	block bool
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice tts.Voice) ([]byte, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.fn(text, voice)
}

func (f *fakeSynth) SampleRate() int { return 24000 }
func (f *fakeSynth) Close() error    { return nil }

func testConfig() *config.Config {
	return &config.Config{
		WikiSearchLimit:            10,
		TTSConcurrency:             3,
		TurnGapMs:                  0,
		NormalizeAudio:             false,
		PipelineTimeoutSec:         60,
		CircuitBreakerMaxFailures:  5,
		CircuitBreakerResetTimeout: 30,
	}
}

func testSource() *fakeSource {
	return &fakeSource{
		searchResults: []wiki.SearchResult{{Title: "ISRO"}},
		article: &wiki.Article{
			Title: "ISRO",
			Body:  "The Indian Space Research Organisation is the national space agency of India.",
			URL:   "https://en.wikipedia.org/wiki/ISRO",
		},
	}
}

const validRaw = `Rajesh: Namaste doston, aaj baat karte hain ISRO ke baare mein!
Priya: Haan Rajesh, space exploration ka topic toh bahut exciting hai.
Rajesh: Bilkul, Chandrayaan mission ne history bana di.`

func silentSynth(bytes int) *fakeSynth {
	return &fakeSynth{fn: func(text string, voice tts.Voice) ([]byte, error) {
		return make([]byte, bytes), nil
	}}
}

func TestRun_Success(t *testing.T) {
	source := testSource()
	p := New(testConfig(), source, &fakeWriter{raw: validRaw}, silentSynth(4800))

	result, err := p.Run(context.Background(), Request{
		Topic:           "isro",
		Audience:        script.AudienceAdults,
		Tone:            script.ToneCasual,
		DurationSeconds: 60,
	}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.Artifact == nil {
		t.Fatal("Expected an artifact")
	}
	if result.Artifact.TurnCount != 3 {
		t.Errorf("Expected 3 turns, got %d", result.Artifact.TurnCount)
	}
	if result.Article.Title != "ISRO" {
		t.Errorf("Expected fetched article in result, got '%s'", result.Article.Title)
	}
	if result.Provider != "fake" {
		t.Errorf("Expected provider name in result, got '%s'", result.Provider)
	}
	if result.JobID == "" {
		t.Error("Expected a job ID to be assigned")
	}
	if source.fetchedTitle != "ISRO" {
		t.Errorf("Expected fetch of top search result, got '%s'", source.fetchedTitle)
	}
}

func TestRun_ExplicitTitleSkipsSearch(t *testing.T) {
	source := testSource()
	p := New(testConfig(), source, &fakeWriter{raw: validRaw}, silentSynth(4800))

	_, err := p.Run(context.Background(), Request{
		Title:           "ISRO",
		Audience:        script.AudienceAdults,
		DurationSeconds: 60,
	}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if source.searchCalls != 0 {
		t.Errorf("Expected no search for explicit title, got %d calls", source.searchCalls)
	}
}

func TestRun_NoSearchResults(t *testing.T) {
	source := testSource()
	source.searchResults = nil
	p := New(testConfig(), source, &fakeWriter{raw: validRaw}, silentSynth(4800))

	_, err := p.Run(context.Background(), Request{Topic: "xyzzy", Audience: script.AudienceAdults}, nil)

	if !errors.Is(err, wiki.ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}
}

func TestRun_FetchNotFound(t *testing.T) {
	source := testSource()
	source.fetchErr = fmt.Errorf("%w: %q", wiki.ErrArticleNotFound, "Xyzzy")
	p := New(testConfig(), source, &fakeWriter{raw: validRaw}, silentSynth(4800))

	_, err := p.Run(context.Background(), Request{Title: "Xyzzy", Audience: script.AudienceAdults}, nil)

	if !errors.Is(err, wiki.ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}
}

func TestRun_GenerationFailure(t *testing.T) {
	writer := &fakeWriter{err: &script.GenerationError{Cause: errors.New("provider down")}}
	p := New(testConfig(), testSource(), writer, silentSynth(4800))

	_, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: script.AudienceAdults}, nil)

	var genErr *script.GenerationError
	if !errors.As(err, &genErr) {
		t.Errorf("Expected *GenerationError, got %v", err)
	}
}

func TestRun_MalformedScript(t *testing.T) {
	writer := &fakeWriter{raw: "Here is your podcast script about ISRO."}
	p := New(testConfig(), testSource(), writer, silentSynth(4800))

	_, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: script.AudienceAdults}, nil)

	var formatErr *script.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("Expected *FormatError, got %v", err)
	}
}

func TestRun_SynthesisFailureIsFailFast(t *testing.T) {
	synth := &fakeSynth{fn: func(text string, voice tts.Voice) ([]byte, error) {
		return nil, errors.New("websocket closed")
	}}
	p := New(testConfig(), testSource(), &fakeWriter{raw: validRaw}, synth)

	result, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: script.AudienceAdults}, nil)

	var synthErr *tts.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("Expected *SynthesisError, got %v", err)
	}
	if result != nil {
		t.Error("Expected no partial artifact after synthesis failure")
	}
}

func TestRun_SegmentsAssembledInTurnOrder(t *testing.T) {
	// Each turn's audio encodes its first word; slower early turns must not
	// reorder the output
	synth := &fakeSynth{fn: func(text string, voice tts.Voice) ([]byte, error) {
		switch {
		case len(text) > 0 && text[0] == 'N': // "Namaste..."
			time.Sleep(30 * time.Millisecond)
			return []byte{1, 0}, nil
		case len(text) > 0 && text[0] == 'H': // "Haan..."
			time.Sleep(15 * time.Millisecond)
			return []byte{2, 0}, nil
		default: // "Bilkul..."
			return []byte{3, 0}, nil
		}
	}}
	p := New(testConfig(), testSource(), &fakeWriter{raw: validRaw}, synth)

	result, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: script.AudienceAdults}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	pcm := result.Artifact.WAV[44:]
	expected := []byte{1, 0, 2, 0, 3, 0}
	if len(pcm) != len(expected) {
		t.Fatalf("Expected %d PCM bytes, got %d", len(expected), len(pcm))
	}
	for i := range expected {
		if pcm[i] != expected[i] {
			t.Fatalf("Expected PCM %v in turn order, got %v", expected, pcm)
		}
	}
}

func TestRun_ElderlyGapPacing(t *testing.T) {
	// 3 turns of 0.1s each; Elderly runs pause 700ms between turns instead
	// of the configured 500ms
	cfg := testConfig()
	cfg.TurnGapMs = 500
	synth := silentSynth(4800) // 0.1s at 24kHz

	cases := []struct {
		audience script.Audience
		expected time.Duration
	}{
		{script.AudienceAdults, 300*time.Millisecond + 2*500*time.Millisecond},
		{script.AudienceElderly, 300*time.Millisecond + 2*700*time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(string(tc.audience), func(t *testing.T) {
			p := New(cfg, testSource(), &fakeWriter{raw: validRaw}, synth)

			result, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: tc.audience}, nil)
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}

			if result.Artifact.Duration != tc.expected {
				t.Errorf("Expected duration %v, got %v", tc.expected, result.Artifact.Duration)
			}
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.PipelineTimeoutSec = 1
	p := New(cfg, testSource(), &fakeWriter{raw: validRaw}, &fakeSynth{block: true})

	_, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: script.AudienceAdults}, nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected *TimeoutError, got %v", err)
	}
	if timeoutErr.Stage != StageSynthesize {
		t.Errorf("Expected timeout during synthesize stage, got '%s'", timeoutErr.Stage)
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	p := New(testConfig(), testSource(), &fakeWriter{raw: validRaw}, silentSynth(4800))

	var mu sync.Mutex
	var events []Event
	progress := func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	_, err := p.Run(context.Background(), Request{Title: "ISRO", Audience: script.AudienceAdults}, progress)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	seen := map[Stage]bool{}
	synthTurns := 0
	for _, e := range events {
		seen[e.Stage] = true
		if e.Stage == StageSynthesize {
			synthTurns++
			if e.TurnsTotal != 3 {
				t.Errorf("Expected 3 total turns in event, got %d", e.TurnsTotal)
			}
		}
	}

	for _, stage := range []Stage{StageFetch, StageGenerate, StageAssemble, StageDone} {
		if !seen[stage] {
			t.Errorf("Expected a '%s' progress event", stage)
		}
	}
	if synthTurns != 3 {
		t.Errorf("Expected 3 synthesize events, got %d", synthTurns)
	}
	if events[len(events)-1].Stage != StageDone {
		t.Errorf("Expected final event to be done, got '%s'", events[len(events)-1].Stage)
	}
}
