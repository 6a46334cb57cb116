package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider"
)

// titleMaxLength bounds a chat title in characters.
const titleMaxLength = 80

const titleInstructions = `
- you will generate a short title based on the first message a user begins a conversation with
- ensure it is not more than 80 characters long
- the title should be a summary of the user's message
- do not use quotes or colons`

// titleMaxTokens keeps the completion short; only the title is wanted.
const titleMaxTokens = 30

// generateTitle derives a chat title from the first user message with a
// short constrained completion. Any failure degrades to the truncated
// message text so chat creation never blocks on the backend.
func (o *Orchestrator) generateTitle(ctx context.Context, req *api.CreateTurnRequest) string {
	text := strings.TrimSpace(req.Message.Text())

	model := o.cfg.TitleModel
	if model == "" {
		model = req.SelectedModel
	}

	maxTokens := titleMaxTokens
	result, err := o.backend.Complete(ctx, &provider.Request{
		Model:     model,
		System:    titleInstructions,
		Messages:  []provider.Message{{Role: provider.RoleUser, Content: text}},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		slog.Warn("title generation failed, using message text", "error", err)
		return truncateTitle(text)
	}

	title := strings.TrimSpace(result.Text())
	if title == "" {
		return truncateTitle(text)
	}
	return truncateTitle(title)
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= titleMaxLength {
		return s
	}
	return string(runes[:titleMaxLength])
}
