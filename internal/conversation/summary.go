package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/extraction"
	"github.com/fyrsmithlabs/folio/internal/llm"
	"github.com/fyrsmithlabs/folio/internal/reranker"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

const (
	summarySystemPrompt = `You summarise chats between a portfolio assistant and a visitor.
Write two or three sentences in the third person about the visitor: who they are,
what they asked about and anything they want to follow up on. Plain text only.`

	maxTranscriptTokens = 3000
	maxSummaryRunes     = 600
)

// summarize returns a short summary of the transcript, or "" for an empty
// one. The LLM is used when available; otherwise or on failure the summary
// is built from the visitor's own words.
func (m *Manager) summarize(ctx context.Context, messages []storage.ConversationMessage) string {
	if len(messages) == 0 {
		return ""
	}
	if m.llm.Available() {
		resp, err := m.llm.Complete(ctx, llm.Request{
			System:      summarySystemPrompt,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: m.transcript(messages)}},
			MaxTokens:   200,
			Temperature: llm.Temperature(0.2),
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return truncateRunes(strings.TrimSpace(resp.Text), maxSummaryRunes)
		}
		m.logger.Warn("session summary fell back to heuristics", zap.Error(err))
	}
	summaryFallbacks.Inc()
	return HeuristicSummary(messages)
}

func (m *Manager) transcript(messages []storage.ConversationMessage) string {
	var b strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return m.tokenizer.Truncate(b.String(), maxTranscriptTokens)
}

// HeuristicSummary describes a transcript without a model: message count,
// the visitor's main topics, their opening question and any stated goal.
func HeuristicSummary(messages []storage.ConversationMessage) string {
	var visitor []string
	for _, msg := range messages {
		if msg.Role == storage.RoleUser {
			visitor = append(visitor, msg.Content)
		}
	}
	parts := []string{fmt.Sprintf("Conversation of %d messages.", len(messages))}
	if len(visitor) == 0 {
		return parts[0]
	}
	all := strings.Join(visitor, "\n")
	if topics := reranker.TopTerms(all, 5); len(topics) > 0 {
		parts = append(parts, "Topics: "+strings.Join(topics, ", ")+".")
	}
	parts = append(parts, fmt.Sprintf("Opened with: %q.", truncateRunes(visitor[0], 160)))
	if goals := extraction.Default.ExtractGoals(all); len(goals) > 0 {
		parts = append(parts, fmt.Sprintf("Stated goal: %q.", truncateRunes(goals[0].Content, 160)))
	}
	return truncateRunes(strings.Join(parts, " "), maxSummaryRunes)
}
