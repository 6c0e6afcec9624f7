package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/ai"
	"github.com/dmitrijs2005/doccoon/internal/server/models"
)

type RefineRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
	Context string `json:"context"`
}

type RefineResult struct {
	Original string  `json:"original"`
	Refined  string  `json:"refined"`
	Mode     ai.Mode `json:"mode"`
}

// AIService refines user content with the user's own provider key, falling
// back to the server's Gemini key.
type AIService struct {
	credentials   *CredentialService
	notifications *NotificationService
	serverKey     string
	newGenerator  func(provider models.Provider, apiKey, model string) (ai.Generator, error)
	log           logging.Logger
}

func NewAIService(c *CredentialService, n *NotificationService, serverGeminiKey string, log logging.Logger) *AIService {
	return &AIService{
		credentials:   c,
		notifications: n,
		serverKey:     serverGeminiKey,
		newGenerator:  ai.NewGenerator,
		log:           log.With("module", "ai"),
	}
}

func (s *AIService) Refine(ctx context.Context, userID int64, req RefineRequest) (*RefineResult, error) {
	mode, err := ai.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}

	key, err := s.resolveKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	gen, err := s.newGenerator(key.Provider, key.APIKey, key.Model)
	if err != nil {
		return nil, err
	}
	refined, err := gen.Generate(ctx, ai.BuildPrompt(mode, req.Context), req.Content)
	if err != nil {
		s.log.Warn(ctx, "ai request failed", "user_id", userID, "provider", key.Provider, "error", err)
		return nil, err
	}

	s.notifications.Notify(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationAIRefineComplete,
		Title:   "AI refinement complete",
		Message: fmt.Sprintf("Your content has been %s successfully.", pastTense(mode)),
	})
	return &RefineResult{Original: req.Content, Refined: refined, Mode: mode}, nil
}

func (s *AIService) resolveKey(ctx context.Context, userID int64) (*ProviderKey, error) {
	key, err := s.credentials.ActiveKey(ctx, userID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, common.ErrNoAPIKey) {
		return nil, err
	}
	if s.serverKey == "" {
		return nil, common.ErrNoAPIKey
	}
	return &ProviderKey{Provider: models.ProviderGemini, Model: models.DefaultGeminiModel, APIKey: s.serverKey}, nil
}

func pastTense(m ai.Mode) string {
	if m == ai.ModeRewrite {
		return "rewritten"
	}
	return "refined"
}
