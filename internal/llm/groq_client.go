package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient implements Provider against Groq's OpenAI-compatible
// chat-completions endpoint
type GroqClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewGroqClient creates a Groq chat-completions client
func NewGroqClient(apiKey, model string) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		apiURL:     groqAPIURL,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete sends one chat-completion request and returns the message text
func (c *GroqClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Cause: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Cause: fmt.Errorf("failed to create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Cause: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Cause: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body)))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}

	if parsed.Error != nil {
		return "", &ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Cause: fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message)}
	}

	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Cause: fmt.Errorf("response contains no choices")}
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// Name identifies the provider for logs and metrics
func (c *GroqClient) Name() string {
	return "groq"
}

// Close releases client resources
func (c *GroqClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
