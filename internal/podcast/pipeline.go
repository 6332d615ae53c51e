package podcast

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samaahar/podcast-gateway/internal/audio"
	"github.com/samaahar/podcast-gateway/internal/config"
	"github.com/samaahar/podcast-gateway/internal/observability"
	"github.com/samaahar/podcast-gateway/internal/resilience"
	"github.com/samaahar/podcast-gateway/internal/script"
	"github.com/samaahar/podcast-gateway/internal/tts"
	"github.com/samaahar/podcast-gateway/internal/wiki"
)

// TimeoutError reports that a run exceeded its wall-clock budget. The stage
// names the pipeline step that was in flight when the budget expired.
type TimeoutError struct {
	Stage  Stage
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pipeline timed out during %s after %s budget", e.Stage, e.Budget)
}

// ArticleSource finds and fetches source articles
type ArticleSource interface {
	Search(ctx context.Context, query string, limit int) ([]wiki.SearchResult, error)
	Fetch(ctx context.Context, title string) (*wiki.Article, error)
}

// ScriptWriter produces raw dialogue text for an article
type ScriptWriter interface {
	Generate(ctx context.Context, article *wiki.Article, audience script.Audience, tone script.Tone, durationSeconds int) (string, error)
	ProviderName() string
}

// Request describes one podcast generation run. Title wins over Topic; when
// only Topic is set the best search match is used.
type Request struct {
	JobID           string
	Topic           string
	Title           string
	Audience        script.Audience
	Tone            script.Tone
	DurationSeconds int
}

// Result is the complete output of a successful run
type Result struct {
	JobID    string
	Article  *wiki.Article
	Script   *script.Script
	Artifact *audio.Artifact
	Provider string
	Elapsed  time.Duration
}

// Stage identifies a pipeline step for progress reporting
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageGenerate   Stage = "generate"
	StageParse      Stage = "parse"
	StageSynthesize Stage = "synthesize"
	StageAssemble   Stage = "assemble"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Event is one progress update emitted during a run
type Event struct {
	JobID      string `json:"job_id"`
	Stage      Stage  `json:"stage"`
	Message    string `json:"message"`
	TurnsDone  int    `json:"turns_done,omitempty"`
	TurnsTotal int    `json:"turns_total,omitempty"`
}

// ProgressFunc receives progress events. May be called from multiple
// goroutines during synthesis.
type ProgressFunc func(Event)

// Pipeline runs article fetch, script generation, synthesis and assembly as
// one fail-fast sequence. Safe for concurrent runs.
type Pipeline struct {
	source ArticleSource
	writer ScriptWriter
	synth  tts.Synthesizer

	searchLimit    int
	concurrency    int
	timeout        time.Duration
	assembleOpts   audio.AssembleOptions
	voiceOverrideA string
	voiceOverrideB string

	wikiBreaker *resilience.CircuitBreaker
	llmBreaker  *resilience.CircuitBreaker
	ttsBreaker  *resilience.CircuitBreaker
}

// New creates a pipeline wired to the given collaborators
func New(cfg *config.Config, source ArticleSource, writer ScriptWriter, synth tts.Synthesizer) *Pipeline {
	resetTimeout := time.Duration(cfg.CircuitBreakerResetTimeout) * time.Second

	p := &Pipeline{
		source:      source,
		writer:      writer,
		synth:       synth,
		searchLimit: cfg.WikiSearchLimit,
		concurrency: cfg.TTSConcurrency,
		timeout:     time.Duration(cfg.PipelineTimeoutSec) * time.Second,
		assembleOpts: audio.AssembleOptions{
			GapMs:     cfg.TurnGapMs,
			Normalize: cfg.NormalizeAudio,
		},
		voiceOverrideA: cfg.TTSVoiceAOverride,
		voiceOverrideB: cfg.TTSVoiceBOverride,
		wikiBreaker:    resilience.NewCircuitBreaker("wikipedia", cfg.CircuitBreakerMaxFailures, resetTimeout),
		llmBreaker:     resilience.NewCircuitBreaker("llm", cfg.CircuitBreakerMaxFailures, resetTimeout),
		ttsBreaker:     resilience.NewCircuitBreaker("tts", cfg.CircuitBreakerMaxFailures, resetTimeout),
	}

	for _, cb := range []*resilience.CircuitBreaker{p.wikiBreaker, p.llmBreaker, p.ttsBreaker} {
		cb.OnStateChange(func(name string, state resilience.CircuitState) {
			observability.UpdateCircuitBreakerState(name, int(state))
			if state == resilience.StateOpen {
				observability.IncrementCircuitBreakerFailures(name)
			}
		})
	}

	return p
}

// Run executes one complete podcast generation. progress may be nil. Any
// stage failure aborts the run; no partial artifact is ever returned.
func (p *Pipeline) Run(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	jobID := req.JobID
	if jobID == "" {
		jobID = observability.NewJobID()
	}
	logger := observability.WithJobID(jobID)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	metrics := observability.NewRunMetrics(jobID)
	metrics.RecordRunStart()
	start := time.Now()

	stage := StageFetch
	result, err := p.run(ctx, jobID, req, metrics, progress, &stage)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = &TimeoutError{Stage: stage, Budget: p.timeout}
		}
		metrics.RecordRunEnd(ErrorKind(err))
		logger.Error().Err(err).Str("stage", string(stage)).Msg("Pipeline run failed")
		return nil, err
	}

	result.Elapsed = time.Since(start)
	metrics.RecordRunEnd("success")
	logger.Info().
		Str("article", result.Article.Title).
		Int("turns", result.Artifact.TurnCount).
		Dur("audio_duration", result.Artifact.Duration).
		Dur("elapsed", result.Elapsed).
		Msg("Pipeline run complete")

	emit(progress, Event{JobID: jobID, Stage: StageDone, Message: "podcast ready"})
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, jobID string, req Request, metrics *observability.RunMetrics, progress ProgressFunc, stage *Stage) (*Result, error) {
	// Stage 1: resolve and fetch the article
	*stage = StageFetch
	emit(progress, Event{JobID: jobID, Stage: StageFetch, Message: "fetching article"})

	article, err := p.fetchArticle(ctx, req, metrics)
	if err != nil {
		return nil, err
	}

	// Stage 2: generate the raw script
	*stage = StageGenerate
	emit(progress, Event{JobID: jobID, Stage: StageGenerate, Message: "writing script"})

	metrics.RecordLLMStart()
	var raw string
	err = p.llmBreaker.Call(func() error {
		var genErr error
		raw, genErr = p.writer.Generate(ctx, article, req.Audience, req.Tone, req.DurationSeconds)
		return genErr
	})
	metrics.RecordLLMEnd(p.writer.ProviderName(), err == nil)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, &script.GenerationError{Cause: err}
		}
		return nil, err
	}

	// Stage 3: parse and validate
	*stage = StageParse
	scr, err := script.Parse(raw)
	if err != nil {
		return nil, err
	}

	// Stage 4: synthesize every turn
	*stage = StageSynthesize
	segments, err := p.synthesizeTurns(ctx, jobID, scr, req.Audience, metrics, progress)
	if err != nil {
		return nil, err
	}

	// Stage 5: assemble the artifact
	*stage = StageAssemble
	emit(progress, Event{JobID: jobID, Stage: StageAssemble, Message: "assembling audio"})

	// Gap widens for audiences that need slower pacing
	opts := p.assembleOpts
	opts.GapMs = tts.TurnGapFor(req.Audience, opts.GapMs)

	artifact, err := audio.Assemble(segments, opts)
	if err != nil {
		return nil, err
	}
	metrics.RecordArtifact(artifact.Duration)

	return &Result{
		JobID:    jobID,
		Article:  article,
		Script:   scr,
		Artifact: artifact,
		Provider: p.writer.ProviderName(),
	}, nil
}

// fetchArticle resolves the request to an article title and fetches it.
// An explicit Title skips the search.
func (p *Pipeline) fetchArticle(ctx context.Context, req Request, metrics *observability.RunMetrics) (*wiki.Article, error) {
	title := req.Title

	if title == "" {
		metrics.RecordWikiStart()
		var results []wiki.SearchResult
		err := p.wikiBreaker.Call(func() error {
			var searchErr error
			results, searchErr = p.source.Search(ctx, req.Topic, p.searchLimit)
			return searchErr
		})
		metrics.RecordWikiEnd("search", err == nil)
		if err != nil {
			return nil, fmt.Errorf("article search failed: %w", err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%w: no results for topic %q", wiki.ErrArticleNotFound, req.Topic)
		}
		title = results[0].Title
	}

	metrics.RecordWikiStart()
	var article *wiki.Article
	err := p.wikiBreaker.Call(func() error {
		var fetchErr error
		article, fetchErr = p.source.Fetch(ctx, title)
		return fetchErr
	})
	metrics.RecordWikiEnd("fetch", err == nil)
	if err != nil {
		return nil, err
	}

	return article, nil
}

// synthesizeTurns runs per-turn TTS with bounded concurrency. Segments come
// back in turn order regardless of completion order. The first failure
// cancels the remaining work and fails the run.
func (p *Pipeline) synthesizeTurns(ctx context.Context, jobID string, scr *script.Script, audience script.Audience, metrics *observability.RunMetrics, progress ProgressFunc) ([]audio.Segment, error) {
	assignment := tts.AssignmentFor(audience, p.voiceOverrideA, p.voiceOverrideB)
	segments := make([]audio.Segment, len(scr.Turns))

	var done atomicCounter
	total := len(scr.Turns)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, turn := range scr.Turns {
		turn := turn
		g.Go(func() error {
			text, voice := tts.PrepareUtterance(turn.Text, assignment[turn.Speaker])

			turnStart := time.Now()
			var pcm []byte
			err := p.ttsBreaker.Call(func() error {
				var synthErr error
				pcm, synthErr = p.synth.Synthesize(gctx, text, voice)
				return synthErr
			})
			metrics.RecordTTSTurn(time.Since(turnStart), len(pcm), err == nil)
			if err != nil {
				return &tts.SynthesisError{TurnIndex: turn.Index, Voice: voice.Name, Cause: err}
			}

			segments[turn.Index] = audio.Segment{
				Index:      turn.Index,
				Speaker:    turn.Speaker,
				PCM:        pcm,
				SampleRate: p.synth.SampleRate(),
			}

			emit(progress, Event{
				JobID:      jobID,
				Stage:      StageSynthesize,
				Message:    "synthesizing dialogue",
				TurnsDone:  done.inc(),
				TurnsTotal: total,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return segments, nil
}

// ErrorKind classifies a run failure for metrics labels and API responses
func ErrorKind(err error) string {
	var (
		formatErr  *script.FormatError
		genErr     *script.GenerationError
		synthErr   *tts.SynthesisError
		precondErr *audio.PrecondError
		timeoutErr *TimeoutError
	)

	switch {
	case errors.Is(err, wiki.ErrArticleNotFound):
		return "not_found"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &genErr):
		return "generation"
	case errors.As(err, &synthErr):
		return "synthesis"
	case errors.As(err, &precondErr):
		return "assembly"
	default:
		return "error"
	}
}

func emit(progress ProgressFunc, event Event) {
	if progress != nil {
		progress(event)
	}
}

type atomicCounter struct {
	n atomic.Int32
}

func (c *atomicCounter) inc() int {
	return int(c.n.Add(1))
}
