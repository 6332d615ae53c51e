package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samaahar/podcast-gateway/internal/llm"
	"github.com/samaahar/podcast-gateway/internal/resilience"
	"github.com/samaahar/podcast-gateway/internal/wiki"
)

// GenerationError reports that the text-generation collaborator failed or
// returned unusable output. The run must not proceed to parsing.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("script generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator produces raw dialogue text from an article via an LLM provider
type Generator struct {
	provider llm.Provider
	opts     PromptOptions
	retry    *resilience.RetryConfig
}

// NewGenerator creates a script generator around the given provider
func NewGenerator(provider llm.Provider, opts PromptOptions, retry *resilience.RetryConfig) *Generator {
	if retry == nil {
		retry = resilience.DefaultRetryConfig()
	}
	return &Generator{
		provider: provider,
		opts:     opts,
		retry:    retry,
	}
}

// Generate builds the prompt and requests one completion. Retries once on
// retryable provider failures with the same inputs; any terminal failure or
// empty output becomes a *GenerationError.
func (g *Generator) Generate(ctx context.Context, article *wiki.Article, audience Audience, tone Tone, durationSeconds int) (string, error) {
	prompt := BuildPrompt(article, audience, tone, durationSeconds, g.opts)

	req := llm.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      prompt,
		Temperature: 0.8,
		TopP:        0.9,
		MaxTokens:   4096,
	}

	var raw string
	err := resilience.Retry(ctx, g.retry, func() error {
		var callErr error
		raw, callErr = g.provider.Complete(ctx, req)
		return callErr
	}, llm.IsRetryableProviderError)
	if err != nil {
		return "", &GenerationError{Cause: err}
	}

	if strings.TrimSpace(raw) == "" {
		return "", &GenerationError{Cause: fmt.Errorf("provider %s returned empty output", g.provider.Name())}
	}

	return raw, nil
}

// ProviderName exposes the underlying provider's name for logs and metrics
func (g *Generator) ProviderName() string {
	return g.provider.Name()
}

// EstimateDuration converts a word count back into expected spoken seconds
func EstimateDuration(wordCount int, wordsPerSecond float64) time.Duration {
	if wordsPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(wordCount)/wordsPerSecond) * time.Second
}
