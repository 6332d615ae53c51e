package tts

import (
	"context"
	"fmt"

	"github.com/samaahar/podcast-gateway/internal/script"
)

// Voice is a TTS voice identifier plus prosody parameters
type Voice struct {
	Name    string `json:"name"`     // Provider voice name, e.g. "en-IN-PrabhatNeural"
	RatePct int    `json:"rate_pct"` // Speaking rate offset in percent, e.g. +15
	PitchHz int    `json:"pitch_hz"` // Pitch offset in Hz, e.g. -5
}

// Rate renders the rate offset in the provider's prosody syntax
func (v Voice) Rate() string {
	return fmt.Sprintf("%+d%%", v.RatePct)
}

// Pitch renders the pitch offset in the provider's prosody syntax
func (v Voice) Pitch() string {
	return fmt.Sprintf("%+dHz", v.PitchHz)
}

// VoiceAssignment maps each speaker to a voice for one pipeline run.
// Derived once from the audience profile and never changed mid-run.
type VoiceAssignment map[script.Speaker]Voice

// Synthesizer converts one utterance into raw audio
type Synthesizer interface {
	// Synthesize returns PCM audio bytes for a single utterance
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)

	// SampleRate returns the sample rate of returned audio in Hz
	SampleRate() int

	// Close releases any underlying connections
	Close() error
}

// SynthesisError wraps a TTS collaborator failure for one turn
type SynthesisError struct {
	TurnIndex int // -1 when the failure is not tied to a turn
	Voice     string
	Cause     error
}

func (e *SynthesisError) Error() string {
	if e.TurnIndex >= 0 {
		return fmt.Sprintf("synthesis failed for turn %d (voice %s): %v", e.TurnIndex, e.Voice, e.Cause)
	}
	return fmt.Sprintf("synthesis failed (voice %s): %v", e.Voice, e.Cause)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}
