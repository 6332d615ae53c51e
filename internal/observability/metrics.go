package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "podcast_gateway_active_runs",
		Help: "Number of pipeline runs currently in flight",
	})

	totalRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_gateway_runs_total",
		Help: "Total number of pipeline runs by outcome",
	}, []string{"status"}) // status: "success" or error kind

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podcast_gateway_run_duration_seconds",
		Help:    "End-to-end pipeline run duration in seconds",
		Buckets: []float64{5, 10, 20, 30, 60, 120, 180, 300},
	})

	// Wikipedia metrics
	wikiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_gateway_wiki_requests_total",
		Help: "Total number of Wikipedia API requests",
	}, []string{"operation", "status"}) // operation: "search" or "fetch"

	wikiLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podcast_gateway_wiki_latency_seconds",
		Help:    "Wikipedia API latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	// Script generation metrics
	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_gateway_llm_requests_total",
		Help: "Total number of script generation requests",
	}, []string{"provider", "status"})

	llmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podcast_gateway_llm_latency_seconds",
		Help:    "Script generation latency in seconds",
		Buckets: []float64{0.5, 1.0, 2.0, 5.0, 10.0, 20.0, 60.0},
	})

	// TTS metrics
	ttsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_gateway_tts_requests_total",
		Help: "Total number of per-turn TTS requests",
	}, []string{"status"})

	ttsLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podcast_gateway_tts_latency_seconds",
		Help:    "Per-turn TTS latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	synthesizedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podcast_gateway_synthesized_audio_bytes_total",
		Help: "Total PCM bytes received from the TTS provider",
	})

	// Artifact metrics
	artifactDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "podcast_gateway_artifact_duration_seconds",
		Help:    "Duration of assembled podcast artifacts in seconds",
		Buckets: []float64{30, 60, 90, 120, 180, 240, 300},
	})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "podcast_gateway_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podcast_gateway_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// RunMetrics tracks timings for a single pipeline run
type RunMetrics struct {
	jobID     string
	startTime time.Time
	wikiStart time.Time
	llmStart  time.Time
	mu        sync.Mutex
}

// NewRunMetrics creates a metrics tracker for one pipeline run
func NewRunMetrics(jobID string) *RunMetrics {
	return &RunMetrics{
		jobID:     jobID,
		startTime: time.Now(),
	}
}

// RecordRunStart records the start of a pipeline run
func (m *RunMetrics) RecordRunStart() {
	activeRuns.Inc()
}

// RecordRunEnd records the end of a pipeline run with its outcome label
func (m *RunMetrics) RecordRunEnd(status string) {
	activeRuns.Dec()
	totalRuns.WithLabelValues(status).Inc()
	runDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordWikiStart records the start of a Wikipedia call
func (m *RunMetrics) RecordWikiStart() {
	m.mu.Lock()
	m.wikiStart = time.Now()
	m.mu.Unlock()
}

// RecordWikiEnd records the end of a Wikipedia call
func (m *RunMetrics) RecordWikiEnd(operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.wikiStart.IsZero() {
		wikiLatency.Observe(time.Since(m.wikiStart).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	wikiRequests.WithLabelValues(operation, status).Inc()
}

// RecordLLMStart records the start of a script generation call
func (m *RunMetrics) RecordLLMStart() {
	m.mu.Lock()
	m.llmStart = time.Now()
	m.mu.Unlock()
}

// RecordLLMEnd records the end of a script generation call
func (m *RunMetrics) RecordLLMEnd(provider string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.llmStart.IsZero() {
		llmLatency.Observe(time.Since(m.llmStart).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	llmRequests.WithLabelValues(provider, status).Inc()
}

// RecordTTSTurn records one per-turn synthesis call. Safe for concurrent use;
// per-turn latency is passed in because turns synthesize in parallel.
func (m *RunMetrics) RecordTTSTurn(latency time.Duration, audioBytes int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ttsRequests.WithLabelValues(status).Inc()
	ttsLatency.Observe(latency.Seconds())
	if audioBytes > 0 {
		synthesizedBytes.Add(float64(audioBytes))
	}
}

// RecordArtifact records the duration of a finished artifact
func (m *RunMetrics) RecordArtifact(duration time.Duration) {
	artifactDuration.Observe(duration.Seconds())
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
