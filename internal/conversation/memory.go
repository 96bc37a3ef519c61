package conversation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/extraction"
	"github.com/fyrsmithlabs/folio/internal/reranker"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

// Relevance weights for RelevantMemories.
const (
	importanceWeight = 0.5
	overlapWeight    = 0.35
	recencyWeight    = 0.15
)

const (
	defaultMemoryLimit = 5
	maxProfileItems    = 20
)

// ScoredMemory is a memory ranked against a query.
type ScoredMemory struct {
	storage.ConversationMemory
	Score float64 `json:"score"`
}

// remember stores the memories found in a user message and folds facts into
// the visitor profile.
func (m *Manager) remember(ctx context.Context, cs storage.ConversationSession, content string) ([]storage.ConversationMemory, error) {
	candidates := m.extractor.Extract(content)
	if len(candidates) == 0 {
		return nil, nil
	}

	existing, err := m.store.ListMemories(ctx, cs.ID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, mem := range existing {
		seen[dedupeKey(mem.Kind, mem.Content)] = true
	}

	var stored []storage.ConversationMemory
	for _, c := range candidates {
		kind := string(c.Kind)
		if c.Importance < m.cfg.MinImportance {
			memoriesTotal.WithLabelValues(kind, "dropped").Inc()
			continue
		}
		key := dedupeKey(c.Kind, c.Content)
		if seen[key] {
			memoriesTotal.WithLabelValues(kind, "duplicate").Inc()
			continue
		}
		seen[key] = true

		mem, err := m.store.CreateMemory(ctx, storage.ConversationMemory{
			SessionID:  cs.ID,
			Kind:       c.Kind,
			Content:    c.Content,
			Importance: c.Importance,
			Keywords:   keywords(c.Content),
			CreatedAt:  m.now().UTC(),
		})
		if err != nil {
			return stored, fmt.Errorf("create memory: %w", err)
		}
		memoriesTotal.WithLabelValues(kind, "stored").Inc()
		stored = append(stored, mem)
		existing = append(existing, mem)
	}

	evicted, err := m.evict(ctx, existing)
	if len(evicted) > 0 {
		kept := stored[:0]
		for _, mem := range stored {
			if !evicted[mem.ID] {
				kept = append(kept, mem)
			}
		}
		stored = kept
	}
	if err != nil {
		return stored, err
	}
	if err := m.mergeProfile(ctx, cs.VisitorID, candidates); err != nil {
		return stored, err
	}
	return stored, nil
}

// evict deletes the least important, oldest memories above the session cap
// and reports the ids it removed.
func (m *Manager) evict(ctx context.Context, memories []storage.ConversationMemory) (map[string]bool, error) {
	excess := len(memories) - m.cfg.MaxMemoriesPerSession
	if excess <= 0 {
		return nil, nil
	}
	ordered := make([]storage.ConversationMemory, len(memories))
	copy(ordered, memories)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Importance != ordered[j].Importance {
			return ordered[i].Importance < ordered[j].Importance
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	evicted := make(map[string]bool, excess)
	for _, mem := range ordered[:excess] {
		if err := m.store.DeleteMemory(ctx, mem.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return evicted, fmt.Errorf("evict memory: %w", err)
		}
		evicted[mem.ID] = true
		memoriesTotal.WithLabelValues(string(mem.Kind), "evicted").Inc()
	}
	return evicted, nil
}

// mergeProfile copies facts, interests, preferences and goals into the
// visitor's profile. Later values for a single-valued field win.
func (m *Manager) mergeProfile(ctx context.Context, visitorID string, candidates []extraction.Candidate) error {
	p, err := m.store.GetProfile(ctx, visitorID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		p = storage.UserProfile{VisitorID: visitorID}
	case err != nil:
		return fmt.Errorf("load profile: %w", err)
	}

	changed := false
	set := func(field *string, value string) {
		if value != "" && *field != value {
			*field = value
			changed = true
		}
	}
	add := func(list *[]string, value string) {
		var ok bool
		*list, ok = appendUnique(*list, value)
		changed = changed || ok
	}

	for _, c := range candidates {
		value := c.Value
		if value == "" {
			value = c.Content
		}
		switch c.Field {
		case extraction.FieldName:
			set(&p.Name, c.Value)
		case extraction.FieldCompany:
			set(&p.Company, c.Value)
		case extraction.FieldRole:
			set(&p.Role, c.Value)
		case extraction.FieldLocation:
			set(&p.Location, c.Value)
		case extraction.FieldEmail:
			set(&p.Email, strings.ToLower(c.Value))
		case extraction.FieldInterest:
			add(&p.Interests, value)
		}
		switch c.Kind {
		case storage.MemoryPreference:
			if c.Field != extraction.FieldInterest {
				add(&p.Preferences, value)
			}
		case storage.MemoryGoal:
			add(&p.Goals, value)
		}
	}
	if !changed {
		return nil
	}
	if _, err := m.store.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	m.logger.Debug("visitor profile updated", zap.String("visitor_id", visitorID))
	return nil
}

// appendUnique appends value unless an equal one (ignoring case) is present,
// keeping the newest maxProfileItems entries.
func appendUnique(list []string, value string) ([]string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return list, false
	}
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return list, false
		}
	}
	list = append(list, value)
	if len(list) > maxProfileItems {
		list = list[len(list)-maxProfileItems:]
	}
	return list, true
}

// RelevantMemories ranks the memories of the session's visitor against query
// and marks the returned ones as accessed. limit <= 0 returns five.
func (m *Manager) RelevantMemories(ctx context.Context, sessionID, query string, limit int) ([]ScoredMemory, error) {
	ctx, span := tracer.Start(ctx, "conversation.RelevantMemories")
	defer span.End()

	cs, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	memories, err := m.store.ListVisitorMemories(ctx, cs.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	if len(memories) == 0 {
		return []ScoredMemory{}, nil
	}

	queryTerms := keywords(query)
	now := m.now()
	halfLife := m.cfg.RecencyHalfLife.Duration().Hours()

	scored := make([]ScoredMemory, 0, len(memories))
	for _, mem := range memories {
		terms := mem.Keywords
		if len(terms) == 0 {
			terms = keywords(mem.Content)
		}
		age := now.Sub(mem.CreatedAt).Hours()
		if age < 0 {
			age = 0
		}
		recency := math.Pow(0.5, age/halfLife)
		score := importanceWeight*mem.Importance +
			overlapWeight*reranker.Jaccard(queryTerms, terms) +
			recencyWeight*recency
		scored = append(scored, ScoredMemory{ConversationMemory: mem, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}

	ids := make([]string, len(scored))
	for i := range scored {
		ids[i] = scored[i].ID
	}
	touched := now.UTC()
	if err := m.store.TouchMemories(ctx, ids, touched); err != nil {
		m.logger.Warn("failed to record memory access", zap.Error(err))
	} else {
		for i := range scored {
			scored[i].AccessCount++
			scored[i].LastAccessedAt = &touched
		}
	}
	return scored, nil
}

func keywords(text string) []string {
	return reranker.Keywords(text)
}

func dedupeKey(kind storage.MemoryKind, content string) string {
	return string(kind) + "|" + normalize(content)
}

// normalize lower-cases content and collapses punctuation and whitespace.
func normalize(content string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(content) {
		if r == '\'' || r == '’' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}
