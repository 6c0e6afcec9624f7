// Package ai talks to the text-generation providers used to refine and
// rewrite page content.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

// ErrProvider wraps every failure reported by a provider.
var ErrProvider = errors.New("ai provider error")

// Generator produces text from an instruction prompt and user content.
type Generator interface {
	Generate(ctx context.Context, prompt, content string) (string, error)
}

// NewGenerator returns a client for provider. The key is held only by the
// returned value.
func NewGenerator(provider models.Provider, apiKey, model string) (Generator, error) {
	model = NormalizeModel(provider, model)
	switch provider {
	case models.ProviderGemini:
		return NewGeminiGenerator(apiKey, model), nil
	case models.ProviderOpenAI:
		return NewOpenAIGenerator(apiKey, model), nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}

// NormalizeModel replaces a model that belongs to the other provider with
// the provider's default.
func NormalizeModel(provider models.Provider, model string) string {
	gemini := models.IsGeminiModel(model)
	switch {
	case provider == models.ProviderGemini && !gemini:
		return models.DefaultGeminiModel
	case provider != models.ProviderGemini && gemini:
		return models.DefaultOpenAIModel
	case model == "":
		return provider.DefaultModel()
	}
	return model
}

// FriendlyMessage turns a provider failure into a message fit for end users.
func FriendlyMessage(err error) string {
	raw := strings.ToLower(err.Error())
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(raw, s) {
				return true
			}
		}
		return false
	}

	switch {
	case has("401", "invalid_api_key", "incorrect api key", "api key not valid"):
		return "Invalid API key. Please check your key in Settings > AI Configuration."
	case has("429", "rate_limit", "resource_exhausted", "quota"):
		return "AI rate limit or quota exceeded. Please try again later, or add your own API key."
	case has("403", "permission"):
		return "Your API key does not have permission for this model. Check your provider plan."
	case has("404", "model_not_found", "not found"):
		return "The selected AI model was not found. Please choose a different model in settings."
	case has("500", "internal", "server_error"):
		return "The AI provider is experiencing issues. Please try again later."
	case has("timeout", "deadline exceeded"):
		return "The AI request timed out. Please try again."
	}
	return "Something went wrong with the AI service. Please try again."
}
