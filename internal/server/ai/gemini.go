package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiBaseURL overrides the API endpoint when non-empty.
var geminiBaseURL = ""

type GeminiGenerator struct {
	apiKey string
	model  string
}

func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	return &GeminiGenerator{apiKey: apiKey, model: model}
}

// Generate sends prompt and content as a single text part.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt, content string) (string, error) {
	cfg := &genai.ClientConfig{APIKey: g.apiKey, Backend: genai.BackendGeminiAPI}
	if geminiBaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrProvider, err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt+"\n\n"+content), nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrProvider, err)
	}
	return resp.Text(), nil
}
