package ai

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/doccoon/internal/common"
)

type Mode string

const (
	ModeRefine  Mode = "refine"
	ModeRewrite Mode = "rewrite"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRefine, ModeRewrite:
		return m, nil
	}
	return "", fmt.Errorf("%w: mode must be %q or %q", common.ErrorValidation, ModeRefine, ModeRewrite)
}

const (
	rewritePrompt = "You are a professional writer and editor. " +
		"Rewrite the following content completely while preserving its meaning. " +
		"Improve clarity, structure, and readability. " +
		"Output in Markdown format."

	refinePrompt = "You are a professional writer and editor. " +
		"Refine the following content by fixing grammar, improving word choice, " +
		"and enhancing readability without changing the overall structure. " +
		"Output in Markdown format."
)

// BuildPrompt returns the instruction for mode, followed by the optional
// context the user gave about the content.
func BuildPrompt(mode Mode, context string) string {
	prompt := refinePrompt
	if mode == ModeRewrite {
		prompt = rewritePrompt
	}
	if context = strings.TrimSpace(context); context != "" {
		prompt += "\n\nContext about this content: " + context
	}
	return prompt
}
