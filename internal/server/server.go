package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/samaahar/podcast-gateway/internal/config"
	"github.com/samaahar/podcast-gateway/internal/observability"
	"github.com/samaahar/podcast-gateway/internal/podcast"
	"github.com/samaahar/podcast-gateway/internal/script"
)

const (
	minDurationSeconds = 30
	maxDurationSeconds = 600
)

// Runner executes one podcast generation end to end
type Runner interface {
	Run(ctx context.Context, req podcast.Request, progress podcast.ProgressFunc) (*podcast.Result, error)
}

// Server exposes the podcast pipeline over HTTP: a small form UI, a JSON
// API and a per-job progress WebSocket.
type Server struct {
	cfg    *config.Config
	runner Runner
	source podcast.ArticleSource
	jobs   *JobStore
	logger zerolog.Logger
}

// New creates a server around the given pipeline and article source
func New(cfg *config.Config, runner Runner, source podcast.ArticleSource) *Server {
	return &Server{
		cfg:    cfg,
		runner: runner,
		source: source,
		jobs:   NewJobStore(),
		logger: observability.GetLogger().With().Str("component", "server").Logger(),
	}
}

// Routes registers all handlers on mux
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/podcast", s.handleCreate)
	mux.HandleFunc("GET /api/podcast/{id}", s.handleJob)
	mux.HandleFunc("GET /api/podcast/{id}/audio", s.handleAudio)
	mux.HandleFunc("GET /ws/jobs/{id}", s.handleJobWS)
}

type searchResponse struct {
	Query   string      `json:"query"`
	Results interface{} `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	results, err := s.source.Search(r.Context(), query, s.cfg.WikiSearchLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Article search failed")
		writeError(w, http.StatusBadGateway, "article search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: results})
}

type createRequest struct {
	Topic           string `json:"topic"`
	Title           string `json:"title"`
	Audience        string `json:"audience"`
	Tone            string `json:"tone"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest

	switch {
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	default:
		// The form UI posts urlencoded fields
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		req.Topic = r.FormValue("topic")
		req.Title = r.FormValue("title")
		req.Audience = r.FormValue("audience")
		req.Tone = r.FormValue("tone")
		if raw := r.FormValue("duration_seconds"); raw != "" {
			seconds, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "duration_seconds must be a number")
				return
			}
			req.DurationSeconds = seconds
		}
	}

	req.Topic = strings.TrimSpace(req.Topic)
	req.Title = strings.TrimSpace(req.Title)
	if req.Topic == "" && req.Title == "" {
		writeError(w, http.StatusBadRequest, "topic or title is required")
		return
	}

	audience, err := script.ParseAudience(req.Audience)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tone, err := script.ParseTone(req.Tone)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	duration := req.DurationSeconds
	if duration <= 0 {
		duration = s.cfg.DefaultDurationSec
	}
	if duration < minDurationSeconds || duration > maxDurationSeconds {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("duration_seconds must be between %d and %d", minDurationSeconds, maxDurationSeconds))
		return
	}

	jobID := observability.NewJobID()
	job := s.jobs.Create(jobID, req.Topic, req.Title, string(audience), string(tone))

	go s.runJob(podcast.Request{
		JobID:           jobID,
		Topic:           req.Topic,
		Title:           req.Title,
		Audience:        audience,
		Tone:            tone,
		DurationSeconds: duration,
	})

	writeJSON(w, http.StatusAccepted, job)
}

// runJob executes one pipeline run in the background. The pipeline enforces
// its own wall-clock budget, so the job is never orphaned.
func (s *Server) runJob(req podcast.Request) {
	s.jobs.SetRunning(req.JobID)

	result, err := s.runner.Run(context.Background(), req, func(e podcast.Event) {
		s.jobs.Publish(req.JobID, e)
	})
	if err != nil {
		s.jobs.Publish(req.JobID, podcast.Event{
			JobID:   req.JobID,
			Stage:   podcast.StageFailed,
			Message: err.Error(),
		})
		s.jobs.Fail(req.JobID, err)
		return
	}

	s.jobs.Complete(req.JobID, result)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	if job.Status != JobDone {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, audio not available", job.Status))
		return
	}

	result, ok := s.jobs.Result(id)
	if !ok {
		writeError(w, http.StatusNotFound, "audio not available")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=podcast-%s.wav", id))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(result.Artifact.WAV)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifact.WAV)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// HTTPServer wraps the mux in an http.Server with production timeouts.
// Write timeout is generous because audio downloads can be several MB.
func (s *Server) HTTPServer(mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
