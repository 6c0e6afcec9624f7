package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAIBaseURL overrides the API endpoint when non-empty.
var openAIBaseURL = ""

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if openAIBaseURL != "" {
		cfg.BaseURL = openAIBaseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}
}

// Generate sends prompt as the system message and content as the user
// message.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt, content string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: %w", ErrProvider, errors.New("empty response"))
	}
	return resp.Choices[0].Message.Content, nil
}
