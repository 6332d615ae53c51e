package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Provider using the Google Generative AI SDK
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client for the given model
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Cause: fmt.Errorf("failed to create client: %w", err)}
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Complete sends one generation request and returns the concatenated text parts
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(req.Temperature))
	model.SetTopP(float32(req.TopP))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Cause: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &ProviderError{Provider: c.Name(), Cause: fmt.Errorf("response contains no candidates")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// Name identifies the provider for logs and metrics
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Close releases the underlying SDK client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
