package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

// Context is the conversation state to put in front of the model.
type Context struct {
	// Text holds the profile and memory blocks for the system prompt.
	Text     string         `json:"text"`
	Tokens   int            `json:"tokens"`
	Memories []ScoredMemory `json:"memories"`
	// History is the most recent turns that fit the budget, oldest first.
	History []storage.ConversationMessage `json:"history"`
}

// BuildContext assembles the visitor profile, the memories relevant to query
// and the latest turns of the session within the configured token budget.
// The profile is added first, then memories by relevance, then history from
// newest to oldest.
func (m *Manager) BuildContext(ctx context.Context, sessionID, query string) (Context, error) {
	ctx, span := tracer.Start(ctx, "conversation.BuildContext")
	defer span.End()

	out := Context{Memories: []ScoredMemory{}, History: []storage.ConversationMessage{}}
	cs, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return out, err
	}
	budget := m.cfg.ContextTokenBudget

	var blocks []string
	used := 0
	if profile, err := m.Profile(ctx, cs.VisitorID); err != nil {
		return out, fmt.Errorf("load profile: %w", err)
	} else if block := profileBlock(profile); block != "" {
		if n := m.tokenizer.Count(block); n <= budget {
			blocks = append(blocks, block)
			used += n
		}
	}

	memories, err := m.RelevantMemories(ctx, sessionID, query, defaultMemoryLimit)
	if err != nil {
		return out, err
	}
	if len(memories) > 0 {
		var b strings.Builder
		b.WriteString("What the visitor has shared:")
		header := m.tokenizer.Count(b.String())
		if used+header < budget {
			used += header
			for _, mem := range memories {
				line := fmt.Sprintf("\n- [%s] %s", mem.Kind, mem.Content)
				n := m.tokenizer.Count(line)
				if used+n > budget {
					break
				}
				b.WriteString(line)
				used += n
				out.Memories = append(out.Memories, mem)
			}
			if len(out.Memories) > 0 {
				blocks = append(blocks, b.String())
			} else {
				used -= header
			}
		}
	}

	history, err := m.store.ListMessages(ctx, sessionID, m.cfg.HistoryTurns)
	if err != nil {
		return out, fmt.Errorf("load history: %w", err)
	}
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		n := history[i].TokenCount
		if n <= 0 {
			n = m.tokenizer.Count(history[i].Content)
		}
		if used+n > budget {
			break
		}
		used += n
		start = i
	}
	out.History = append(out.History, history[start:]...)

	out.Text = strings.Join(blocks, "\n\n")
	out.Tokens = used
	return out, nil
}

func profileBlock(p storage.UserProfile) string {
	var lines []string
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
	}
	list := func(label string, values []string) {
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, strings.Join(values, "; ")))
		}
	}
	field("Name", p.Name)
	field("Role", p.Role)
	field("Company", p.Company)
	field("Location", p.Location)
	field("E-mail", p.Email)
	list("Interests", p.Interests)
	list("Preferences", p.Preferences)
	list("Goals", p.Goals)
	if len(lines) == 0 {
		return ""
	}
	return "Visitor profile:\n" + strings.Join(lines, "\n")
}
