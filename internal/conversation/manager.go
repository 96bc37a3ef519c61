package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/extraction"
	"github.com/fyrsmithlabs/folio/internal/llm"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

const (
	defaultTitle      = "Conversation"
	maxTitleRunes     = 120
	maxMessageRunes   = 8000
	defaultMaxSession = 50
)

var (
	// ErrSessionNotFound is returned for unknown session ids. It matches
	// storage.ErrNotFound.
	ErrSessionNotFound = fmt.Errorf("conversation session %w", storage.ErrNotFound)
	// ErrSessionEnded is returned when a message is added to an ended session.
	ErrSessionEnded = errors.New("conversation session has ended")
	// ErrEmptyMessage is returned for blank message content.
	ErrEmptyMessage = errors.New("message content is empty")
	// ErrInvalidRole is returned for an unknown message role.
	ErrInvalidRole = errors.New("invalid message role")
)

var tracer = otel.Tracer("folio.conversation")

// Store persists sessions, messages, memories and visitor profiles.
type Store interface {
	CreateSession(ctx context.Context, cs storage.ConversationSession) (storage.ConversationSession, error)
	GetSession(ctx context.Context, id string) (storage.ConversationSession, error)
	ListSessions(ctx context.Context, visitorID string, limit int) ([]storage.ConversationSession, error)
	EndSession(ctx context.Context, id, summary string, at time.Time) error
	DeleteSession(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, m storage.ConversationMessage) (storage.ConversationMessage, error)
	ListMessages(ctx context.Context, sessionID string, limit int) ([]storage.ConversationMessage, error)

	CreateMemory(ctx context.Context, m storage.ConversationMemory) (storage.ConversationMemory, error)
	ListMemories(ctx context.Context, sessionID string) ([]storage.ConversationMemory, error)
	ListVisitorMemories(ctx context.Context, visitorID string) ([]storage.ConversationMemory, error)
	DeleteMemory(ctx context.Context, id string) error
	TouchMemories(ctx context.Context, ids []string, at time.Time) error

	GetProfile(ctx context.Context, visitorID string) (storage.UserProfile, error)
	UpsertProfile(ctx context.Context, p storage.UserProfile) (storage.UserProfile, error)
}

// Manager records conversations and turns them into prompt context.
type Manager struct {
	cfg       config.MemoryConfig
	store     Store
	llm       llm.Client
	tokenizer *llm.Tokenizer
	extractor *extraction.Extractor
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLLM sets the client used to summarise ended sessions.
func WithLLM(c llm.Client) Option { return func(m *Manager) { m.llm = c } }

// WithTokenizer sets the tokenizer used for message counts and context budgets.
func WithTokenizer(t *llm.Tokenizer) Option { return func(m *Manager) { m.tokenizer = t } }

// WithExtractor replaces the default memory patterns.
func WithExtractor(e *extraction.Extractor) Option { return func(m *Manager) { m.extractor = e } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager returns a Manager over store.
func NewManager(cfg config.MemoryConfig, store Store, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("conversation: store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxMemoriesPerSession <= 0 {
		cfg.MaxMemoriesPerSession = 200
	}
	if cfg.MinImportance < 0 || cfg.MinImportance > 1 {
		cfg.MinImportance = 0.4
	}
	if cfg.RecencyHalfLife <= 0 {
		cfg.RecencyHalfLife = config.Duration(72 * time.Hour)
	}
	if cfg.ContextTokenBudget <= 0 {
		cfg.ContextTokenBudget = 1200
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 8
	}

	m := &Manager{
		cfg:       cfg,
		store:     store,
		llm:       llm.Disabled{},
		extractor: extraction.Default,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.llm == nil {
		m.llm = llm.Disabled{}
	}
	if m.tokenizer == nil {
		m.tokenizer = llm.NewTokenizer("")
	}
	return m, nil
}

// StartSession opens a session. An empty visitorID gets a fresh one.
func (m *Manager) StartSession(ctx context.Context, visitorID, title string) (storage.ConversationSession, error) {
	visitorID, err := sanitize.VisitorID(visitorID)
	if err != nil {
		return storage.ConversationSession{}, err
	}
	if visitorID == "" {
		visitorID = uuid.NewString()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}
	now := m.now().UTC()
	cs, err := m.store.CreateSession(ctx, storage.ConversationSession{
		VisitorID:      visitorID,
		Title:          truncateRunes(title, maxTitleRunes),
		StartedAt:      now,
		LastActivityAt: now,
	})
	if err != nil {
		return cs, fmt.Errorf("start session: %w", err)
	}
	sessionsTotal.WithLabelValues("started").Inc()
	m.logger.Debug("conversation session started",
		zap.String("session_id", cs.ID),
		zap.String("visitor_id", cs.VisitorID),
	)
	return cs, nil
}

// GetSession returns one session.
func (m *Manager) GetSession(ctx context.Context, id string) (storage.ConversationSession, error) {
	cs, err := m.store.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return cs, ErrSessionNotFound
	}
	return cs, err
}

// ListSessions returns a visitor's sessions, newest first. An empty
// visitorID lists every session.
func (m *Manager) ListSessions(ctx context.Context, visitorID string, limit int) ([]storage.ConversationSession, error) {
	if limit <= 0 {
		limit = defaultMaxSession
	}
	return m.store.ListSessions(ctx, visitorID, limit)
}

// Messages returns the last limit messages of a session in order. limit <= 0
// returns all of them.
func (m *Manager) Messages(ctx context.Context, sessionID string, limit int) ([]storage.ConversationMessage, error) {
	if _, err := m.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.store.ListMessages(ctx, sessionID, limit)
}

// Memories returns a session's memories, most important first.
func (m *Manager) Memories(ctx context.Context, sessionID string) ([]storage.ConversationMemory, error) {
	if _, err := m.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.store.ListMemories(ctx, sessionID)
}

// Profile returns what a visitor has told the assistant about themselves.
// Unknown visitors get an empty profile.
func (m *Manager) Profile(ctx context.Context, visitorID string) (storage.UserProfile, error) {
	p, err := m.store.GetProfile(ctx, visitorID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.UserProfile{
			VisitorID:   visitorID,
			Interests:   []string{},
			Preferences: []string{},
			Goals:       []string{},
		}, nil
	}
	return p, err
}

// EndSession closes a session and stores its summary as a memory. Ending an
// already ended session returns it unchanged.
func (m *Manager) EndSession(ctx context.Context, id string) (storage.ConversationSession, error) {
	ctx, span := tracer.Start(ctx, "conversation.EndSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	cs, err := m.GetSession(ctx, id)
	if err != nil {
		return cs, err
	}
	if !cs.Active() {
		return cs, nil
	}

	messages, err := m.store.ListMessages(ctx, id, 0)
	if err != nil {
		return cs, fmt.Errorf("load transcript: %w", err)
	}
	summary := m.summarize(ctx, messages)

	now := m.now().UTC()
	if summary != "" {
		_, err := m.store.CreateMemory(ctx, storage.ConversationMemory{
			SessionID:  id,
			Kind:       storage.MemorySummary,
			Content:    summary,
			Importance: extraction.Importance(storage.MemorySummary, summary),
			Keywords:   keywords(summary),
			CreatedAt:  now,
		})
		if err != nil {
			m.logger.Warn("failed to store session summary", zap.String("session_id", id), zap.Error(err))
		} else {
			memoriesTotal.WithLabelValues(string(storage.MemorySummary), "stored").Inc()
		}
	}
	if err := m.store.EndSession(ctx, id, summary, now); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return cs, ErrSessionNotFound
		}
		return cs, fmt.Errorf("end session: %w", err)
	}
	sessionsTotal.WithLabelValues("ended").Inc()

	cs.Summary = summary
	cs.EndedAt = &now
	cs.LastActivityAt = now
	return cs, nil
}

// DeleteSession removes a session with its messages and memories.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	sessionsTotal.WithLabelValues("deleted").Inc()
	return nil
}

// AddMessage records a message. User messages are mined for memories, which
// are returned alongside the stored message. Extraction failures are logged
// and do not fail the call.
func (m *Manager) AddMessage(ctx context.Context, sessionID string, role storage.MessageRole, content string) (storage.ConversationMessage, []storage.ConversationMemory, error) {
	ctx, span := tracer.Start(ctx, "conversation.AddMessage")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.String("message.role", string(role)))

	switch role {
	case storage.RoleUser, storage.RoleAssistant, storage.RoleSystem:
	default:
		return storage.ConversationMessage{}, nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return storage.ConversationMessage{}, nil, ErrEmptyMessage
	}
	content = truncateRunes(content, maxMessageRunes)

	cs, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return storage.ConversationMessage{}, nil, err
	}
	if !cs.Active() {
		return storage.ConversationMessage{}, nil, ErrSessionEnded
	}

	msg, err := m.store.AppendMessage(ctx, storage.ConversationMessage{
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		TokenCount: m.tokenizer.Count(content),
		CreatedAt:  m.now().UTC(),
	})
	if err != nil {
		return msg, nil, fmt.Errorf("append message: %w", err)
	}
	messagesTotal.WithLabelValues(string(role)).Inc()

	if role != storage.RoleUser {
		return msg, nil, nil
	}
	memories, err := m.remember(ctx, cs, content)
	if err != nil {
		m.logger.Warn("memory extraction failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	span.SetAttributes(attribute.Int("memories.stored", len(memories)))
	return msg, memories, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
