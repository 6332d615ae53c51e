package llm

import (
	"context"
	"errors"
	"fmt"
)

// CompletionRequest carries a single text-generation request
type CompletionRequest struct {
	System      string  // System instruction, may be empty
	Prompt      string  // User prompt
	Temperature float64 // Sampling temperature
	TopP        float64 // Nucleus sampling cutoff
	MaxTokens   int     // Output token cap
}

// Provider is a hosted text-generation collaborator.
// Implementations return the raw completion text; callers own all parsing.
type Provider interface {
	// Complete returns the generated text for a single request
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Name identifies the provider for logs and metrics
	Name() string

	// Close releases any underlying connections
	Close() error
}

// ProviderError wraps a failure from the text-generation collaborator
// (network, quota, auth). StatusCode is zero when no HTTP status applies.
type ProviderError struct {
	Provider   string
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is worth one more attempt.
// Client errors (4xx) are never retryable; everything else may be transient.
func (e *ProviderError) Retryable() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != 429 {
		return false
	}
	return true
}

// IsRetryableProviderError is the retry predicate for provider calls
func IsRetryableProviderError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable()
	}
	return false
}
