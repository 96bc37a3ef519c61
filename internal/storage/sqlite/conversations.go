package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

const sessionColumns = `id, visitor_id, title, summary, message_count, started_at, last_activity_at, ended_at`

func scanSession(row rowScanner) (storage.ConversationSession, error) {
	var cs storage.ConversationSession
	var started, last int64
	var ended sql.NullInt64
	if err := row.Scan(&cs.ID, &cs.VisitorID, &cs.Title, &cs.Summary, &cs.MessageCount, &started, &last, &ended); err != nil {
		return cs, err
	}
	cs.StartedAt, cs.LastActivityAt = fromMillis(started), fromMillis(last)
	cs.EndedAt = fromNullMillis(ended)
	return cs, nil
}

// CreateSession inserts a conversation session.
func (s *Store) CreateSession(ctx context.Context, cs storage.ConversationSession) (storage.ConversationSession, error) {
	if err := s.ready(ctx); err != nil {
		return cs, err
	}
	if strings.TrimSpace(cs.VisitorID) == "" {
		return cs, fmt.Errorf("visitor id is required")
	}
	cs.ID = newID(cs.ID)
	if cs.StartedAt.IsZero() {
		cs.StartedAt = s.now()
	}
	if cs.LastActivityAt.IsZero() {
		cs.LastActivityAt = cs.StartedAt
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO conversation_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.VisitorID, cs.Title, cs.Summary, cs.MessageCount,
		toMillis(cs.StartedAt), toMillis(cs.LastActivityAt), nullMillis(cs.EndedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return cs, storage.ErrAlreadyExists
		}
		return cs, fmt.Errorf("create conversation session: %w", err)
	}
	return cs, nil
}

// GetSession returns one session.
func (s *Store) GetSession(ctx context.Context, id string) (storage.ConversationSession, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ConversationSession{}, err
	}
	cs, err := scanSession(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM conversation_sessions WHERE id = ?`, id))
	return cs, notFound(err)
}

// ListSessions returns sessions by most recent activity. An empty visitorID
// lists every visitor. limit <= 0 means no limit.
func (s *Store) ListSessions(ctx context.Context, visitorID string, limit int) ([]storage.ConversationSession, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + sessionColumns + ` FROM conversation_sessions`
	var args []any
	if visitorID != "" {
		query += ` WHERE visitor_id = ?`
		args = append(args, visitorID)
	}
	query += ` ORDER BY last_activity_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversation sessions: %w", err)
	}
	defer rows.Close()

	out := []storage.ConversationSession{}
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation session: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// EndSession marks a session ended and stores its summary.
func (s *Store) EndSession(ctx context.Context, id, summary string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "end conversation session",
		`UPDATE conversation_sessions SET summary = ?, ended_at = ?, last_activity_at = ? WHERE id = ?`,
		summary, toMillis(at), toMillis(at), id)
}

// DeleteSession removes a session; messages and memories cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete conversation session", `DELETE FROM conversation_sessions WHERE id = ?`, id)
}

// AppendMessage inserts a message and bumps the session's activity and
// message count in one transaction.
func (s *Store) AppendMessage(ctx context.Context, m storage.ConversationMessage) (storage.ConversationMessage, error) {
	if err := s.ready(ctx); err != nil {
		return m, err
	}
	m.ID = newID(m.ID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return m, fmt.Errorf("begin append message: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	err = tx.QueryRowContext(ctx, `SELECT message_count FROM conversation_sessions WHERE id = ?`, m.SessionID).Scan(&seq)
	if err != nil {
		return m, notFound(err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversation_messages (id, session_id, role, content, token_count, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, string(m.Role), m.Content, m.TokenCount, toMillis(m.CreatedAt), seq+1,
	); err != nil {
		if isForeignKeyViolation(err) {
			return m, storage.ErrInvalidReference
		}
		return m, fmt.Errorf("insert conversation message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversation_sessions SET message_count = message_count + 1, last_activity_at = ? WHERE id = ?`,
		toMillis(m.CreatedAt), m.SessionID,
	); err != nil {
		return m, fmt.Errorf("touch conversation session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return m, fmt.Errorf("commit append message: %w", err)
	}
	return m, nil
}

// ListMessages returns the last limit messages of a session in chronological
// order. limit <= 0 returns all of them.
func (s *Store) ListMessages(ctx context.Context, sessionID string, limit int) ([]storage.ConversationMessage, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT id, session_id, role, content, token_count, created_at FROM (
	            SELECT id, session_id, role, content, token_count, created_at, seq
	            FROM conversation_messages WHERE session_id = ? ORDER BY seq DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query += `) ORDER BY seq ASC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversation messages: %w", err)
	}
	defer rows.Close()

	out := []storage.ConversationMessage{}
	for rows.Next() {
		var m storage.ConversationMessage
		var role string
		var created int64
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.TokenCount, &created); err != nil {
			return nil, fmt.Errorf("scan conversation message: %w", err)
		}
		m.Role = storage.MessageRole(role)
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

const memoryColumns = `id, session_id, kind, content, importance, keywords, access_count, last_accessed_at, created_at`

func scanMemory(row rowScanner) (storage.ConversationMemory, error) {
	var m storage.ConversationMemory
	var kind, keywords string
	var last sql.NullInt64
	var created int64
	if err := row.Scan(&m.ID, &m.SessionID, &kind, &m.Content, &m.Importance, &keywords,
		&m.AccessCount, &last, &created); err != nil {
		return m, err
	}
	m.Kind = storage.MemoryKind(kind)
	m.Keywords = decodeList(keywords)
	m.LastAccessedAt = fromNullMillis(last)
	m.CreatedAt = fromMillis(created)
	return m, nil
}

// CreateMemory inserts a memory. The session must exist.
func (s *Store) CreateMemory(ctx context.Context, m storage.ConversationMemory) (storage.ConversationMemory, error) {
	if err := s.ready(ctx); err != nil {
		return m, err
	}
	m.ID = newID(m.ID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if m.Keywords == nil {
		m.Keywords = []string{}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO conversation_memories (`+memoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, string(m.Kind), m.Content, m.Importance, encodeList(m.Keywords),
		m.AccessCount, nullMillis(m.LastAccessedAt), toMillis(m.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return m, storage.ErrInvalidReference
		}
		if isUniqueViolation(err) {
			return m, storage.ErrAlreadyExists
		}
		return m, fmt.Errorf("create conversation memory: %w", err)
	}
	return m, nil
}

func (s *Store) queryMemories(ctx context.Context, query string, args ...any) ([]storage.ConversationMemory, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversation memories: %w", err)
	}
	defer rows.Close()

	out := []storage.ConversationMemory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation memory: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListMemories returns a session's memories, most important first.
func (s *Store) ListMemories(ctx context.Context, sessionID string) ([]storage.ConversationMemory, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryMemories(ctx,
		`SELECT `+memoryColumns+` FROM conversation_memories WHERE session_id = ?
		 ORDER BY importance DESC, created_at DESC`, sessionID)
}

// ListVisitorMemories returns the memories of every session of a visitor.
func (s *Store) ListVisitorMemories(ctx context.Context, visitorID string) ([]storage.ConversationMemory, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryMemories(ctx,
		`SELECT m.id, m.session_id, m.kind, m.content, m.importance, m.keywords, m.access_count,
		        m.last_accessed_at, m.created_at
		 FROM conversation_memories m
		 JOIN conversation_sessions cs ON cs.id = m.session_id
		 WHERE cs.visitor_id = ?
		 ORDER BY m.importance DESC, m.created_at DESC`, visitorID)
}

// DeleteMemory removes one memory.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete conversation memory", `DELETE FROM conversation_memories WHERE id = ?`, id)
}

// TouchMemories records that memories were used to build a prompt.
func (s *Store) TouchMemories(ctx context.Context, ids []string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, toMillis(at))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE conversation_memories SET access_count = access_count + 1, last_accessed_at = ?
		 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("touch conversation memories: %w", err)
	}
	return nil
}

// GetProfile returns a visitor profile.
func (s *Store) GetProfile(ctx context.Context, visitorID string) (storage.UserProfile, error) {
	if err := s.ready(ctx); err != nil {
		return storage.UserProfile{}, err
	}
	var p storage.UserProfile
	var interests, prefs, goals string
	var updated int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT visitor_id, name, email, company, role, location, interests, preferences, goals, updated_at
		 FROM user_profiles WHERE visitor_id = ?`, visitorID).
		Scan(&p.VisitorID, &p.Name, &p.Email, &p.Company, &p.Role, &p.Location, &interests, &prefs, &goals, &updated)
	if err != nil {
		return p, notFound(err)
	}
	p.Interests, p.Preferences, p.Goals = decodeList(interests), decodeList(prefs), decodeList(goals)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// UpsertProfile writes a visitor profile.
func (s *Store) UpsertProfile(ctx context.Context, p storage.UserProfile) (storage.UserProfile, error) {
	if err := s.ready(ctx); err != nil {
		return p, err
	}
	if strings.TrimSpace(p.VisitorID) == "" {
		return p, fmt.Errorf("visitor id is required")
	}
	p.UpdatedAt = s.now()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO user_profiles (visitor_id, name, email, company, role, location, interests, preferences, goals, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (visitor_id) DO UPDATE SET
		   name = excluded.name,
		   email = excluded.email,
		   company = excluded.company,
		   role = excluded.role,
		   location = excluded.location,
		   interests = excluded.interests,
		   preferences = excluded.preferences,
		   goals = excluded.goals,
		   updated_at = excluded.updated_at`,
		p.VisitorID, p.Name, p.Email, p.Company, p.Role, p.Location,
		encodeList(p.Interests), encodeList(p.Preferences), encodeList(p.Goals), toMillis(p.UpdatedAt),
	)
	if err != nil {
		return p, fmt.Errorf("upsert user profile: %w", err)
	}
	return p, nil
}
