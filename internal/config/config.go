package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the podcast gateway service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Public base URL for this service. Used only for logging the UI endpoint.
	PodcastGatewayURL string `envconfig:"PODCAST_GATEWAY_URL" default:""`

	// Script generation provider configuration
	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"groq"` // groq, gemini
	GroqAPIKey   string `envconfig:"GROQ_API_KEY" default:""`
	GroqModel    string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// Wikipedia configuration
	WikiLanguage    string `envconfig:"WIKI_LANGUAGE" default:"en"`
	WikiSearchLimit int    `envconfig:"WIKI_SEARCH_LIMIT" default:"10"`
	WikiCharBudget  int    `envconfig:"WIKI_CHAR_BUDGET" default:"5000"` // Max article characters fed to the prompt

	// Script generation tuning
	HinglishHindiRatio float64 `envconfig:"HINGLISH_HINDI_RATIO" default:"0.6"` // Instructed Hindi share of the dialogue
	WordsPerSecond     float64 `envconfig:"WORDS_PER_SECOND" default:"2.5"`     // Speaking-rate constant for word budgets
	DefaultDurationSec int     `envconfig:"DEFAULT_DURATION_SEC" default:"120"` // Target duration when the caller omits one

	// TTS configuration
	TTSVoiceAOverride string `envconfig:"TTS_VOICE_A_OVERRIDE" default:""` // Force a voice for speaker A (debugging)
	TTSVoiceBOverride string `envconfig:"TTS_VOICE_B_OVERRIDE" default:""`
	TTSConcurrency    int    `envconfig:"TTS_CONCURRENCY" default:"3"` // Bounded per-turn synthesis workers

	// Audio assembly configuration
	TurnGapMs      int  `envconfig:"TURN_GAP_MS" default:"500"`      // Silence between speaker turns in milliseconds
	NormalizeAudio bool `envconfig:"NORMALIZE_AUDIO" default:"true"` // Peak-normalize the final track

	// Pipeline configuration
	PipelineTimeoutSec int `envconfig:"PIPELINE_TIMEOUT_SEC" default:"180"` // Overall wall-clock budget per run

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"2"`             // Attempts per external call (1 = no retry)
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"200"`        // Initial backoff in milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when LLM_PROVIDER=groq")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (expected groq or gemini)", c.LLMProvider)
	}

	if c.TTSConcurrency < 1 {
		return fmt.Errorf("TTS_CONCURRENCY must be at least 1, got %d", c.TTSConcurrency)
	}
	if c.HinglishHindiRatio < 0 || c.HinglishHindiRatio > 1 {
		return fmt.Errorf("HINGLISH_HINDI_RATIO must be between 0 and 1, got %f", c.HinglishHindiRatio)
	}
	if c.TurnGapMs < 0 {
		return fmt.Errorf("TURN_GAP_MS must not be negative, got %d", c.TurnGapMs)
	}
	if c.PipelineTimeoutSec < 1 {
		return fmt.Errorf("PIPELINE_TIMEOUT_SEC must be at least 1, got %d", c.PipelineTimeoutSec)
	}

	return nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
