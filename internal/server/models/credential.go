package models

import (
	"slices"
	"time"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

var (
	OpenAIModels = []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-nano", "gpt-4.1-mini", "gpt-4.1"}
	GeminiModels = []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"}
)

func (p Provider) Valid() bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

// DefaultModel is the model used when a key is stored without one.
func (p Provider) DefaultModel() string {
	if p == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// SupportsModel reports whether model is selectable for p.
func (p Provider) SupportsModel(model string) bool {
	switch p {
	case ProviderOpenAI:
		return slices.Contains(OpenAIModels, model)
	case ProviderGemini:
		return slices.Contains(GeminiModels, model)
	}
	return false
}

func IsGeminiModel(model string) bool {
	return slices.Contains(GeminiModels, model)
}

// EncodingVersion tells how Credential.APIKey is stored.
type EncodingVersion int

const (
	// EncodingPlaintext marks rows written before encryption at rest.
	EncodingPlaintext EncodingVersion = 0
	// EncodingVaultV1 marks rows holding a vault token.
	EncodingVaultV1 EncodingVersion = 1
)

// Credential is a user's API key for an AI provider. APIKey holds the stored
// value as-is; for EncodingVaultV1 that is ciphertext.
type Credential struct {
	ID              int64
	UserID          int64
	Provider        Provider
	Label           string
	APIKey          string
	EncodingVersion EncodingVersion
	Model           string
	IsActive        bool
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// CredentialView is the only shape in which a credential leaves the server.
type CredentialView struct {
	ID        int64     `json:"id"`
	Provider  Provider  `json:"provider"`
	Label     string    `json:"label"`
	MaskedKey string    `json:"masked_key"`
	Model     string    `json:"model"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
