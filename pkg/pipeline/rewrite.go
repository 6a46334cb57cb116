package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider"
)

// Query rewriting uses a short constrained completion: low temperature
// for focused queries, a tight token budget since only the query itself
// is wanted.
const (
	rewriteTemperature = float32(0.1)
	rewriteMaxTokens   = 30
	rewriteHistory     = 5
)

const rewriteInstructions = `
Your task is to generate an optimal search query based on the user's message and conversation history. The search query will be used to search the web for relevant information.

INSTRUCTIONS:
1. Analyze the user's current message and previous conversation context
2. Extract the key information needs and search intent
3. Formulate a clear, concise search query (3-10 words) that will yield the most relevant results
4. Return ONLY the search query text with no additional explanation or formatting
5. Focus on specific technical terms, entities, or concepts that will help find precise information
6. Avoid generic terms that would lead to broad results`

// rewriteQuery turns the conversation into a focused search query.
// Any failure or blank output degrades to the raw current-turn text so
// the search still runs.
func (p *Pipeline) rewriteQuery(ctx context.Context, in *Input) string {
	raw := in.UserTurn.Text()

	history := in.History
	if len(history) > rewriteHistory {
		history = history[len(history)-rewriteHistory:]
	}

	msgs := make([]provider.Message, 0, len(history)+1)
	for _, turn := range history {
		msgs = append(msgs, turnMessage(turn))
	}
	msgs = append(msgs, provider.Message{
		Role:    provider.RoleUser,
		Content: "Generate a search query for: " + raw,
	})

	temp := rewriteTemperature
	maxTokens := rewriteMaxTokens

	result, err := p.backend.Complete(ctx, &provider.Request{
		Model:       in.Model,
		System:      p.cfg.SystemPrompt + rewriteInstructions,
		Messages:    msgs,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		slog.Warn("query rewrite failed, using raw message text",
			"chat_id", in.ChatID, "error", err)
		return raw
	}

	query := strings.TrimSpace(result.Text())
	if query == "" {
		return raw
	}
	return query
}
