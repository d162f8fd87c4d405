package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiProvider generates through the official GenAI SDK with JSON output
// mode forced on.
type GeminiProvider struct {
	cfg GeminiConfig
}

var _ Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	return &GeminiProvider{cfg: cfg}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to create client: %w", err)}
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(userPrompt), config)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("generation failed: %w", err)}
	}

	text := result.Text()
	if text == "" {
		return "", &SchemaError{Reason: "empty generation"}
	}
	return text, nil
}
