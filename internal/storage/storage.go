// Package storage defines the persisted folio records and the errors shared
// by storage backends.
package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidReference indicates a foreign key points at a missing record.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// ContactStatus tracks triage of a contact form submission.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactArchived:
		return true
	}
	return false
}

// ContactSubmission is one message sent through the public contact form.
type ContactSubmission struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CaseStudy is a portfolio project write-up.
type CaseStudy struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Challenge     string    `json:"challenge"`
	Solution      string    `json:"solution"`
	Outcome       string    `json:"outcome"`
	Technologies  []string  `json:"technologies"`
	CoverImageURL string    `json:"cover_image_url"`
	Featured      bool      `json:"featured"`
	Published     bool      `json:"published"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ExperienceEntry is one position on the career timeline.
type ExperienceEntry struct {
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Location    string     `json:"location"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description"`
	Highlights  []string   `json:"highlights"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CoreValue is a short statement of professional values.
type CoreValue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PortfolioImage is a gallery image.
type PortfolioImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
	Caption   string    `json:"caption"`
	Category  string    `json:"category"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeoSettings holds per-page metadata. Version increments on every write.
type SeoSettings struct {
	Page         string    `json:"page"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Keywords     []string  `json:"keywords"`
	OGImageURL   string    `json:"og_image_url"`
	CanonicalURL string    `json:"canonical_url"`
	Version      int       `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HeroID is the key of the single hero content row.
const HeroID = "hero"

// HeroContent is the landing page hero section. Version increments on every
// write.
type HeroContent struct {
	ID            string    `json:"id"`
	Headline      string    `json:"headline"`
	Subheadline   string    `json:"subheadline"`
	CTAText       string    `json:"cta_text"`
	CTAURL        string    `json:"cta_url"`
	BackgroundURL string    `json:"background_url"`
	Version       int       `json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentStatus tracks the ingestion pipeline for a knowledge document.
type DocumentStatus string

const (
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// DocumentInsights is the structured analysis of a knowledge document.
type DocumentInsights struct {
	KeyPoints       []string `json:"key_points"`
	Skills          []string `json:"skills"`
	Technologies    []string `json:"technologies"`
	Topics          []string `json:"topics"`
	Achievements    []string `json:"achievements"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	// Source is "llm" or "heuristic".
	Source string `json:"source"`
}

// KnowledgeDocument is an uploaded document in the knowledge base.
type KnowledgeDocument struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
	Checksum    string           `json:"checksum"`
	Status      DocumentStatus   `json:"status"`
	Text        string           `json:"-"`
	WordCount   int              `json:"word_count"`
	PageCount   int              `json:"page_count,omitempty"`
	Summary     string           `json:"summary"`
	Insights    DocumentInsights `json:"insights"`
	ChunkCount  int              `json:"chunk_count"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ConversationSession groups the messages of one chat.
type ConversationSession struct {
	ID             string     `json:"id"`
	VisitorID      string     `json:"visitor_id"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary,omitempty"`
	MessageCount   int        `json:"message_count"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// Active reports whether the session has not been ended.
func (s ConversationSession) Active() bool {
	return s.EndedAt == nil
}

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ConversationMessage is one chat turn.
type ConversationMessage struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id"`
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	TokenCount int         `json:"token_count"`
	CreatedAt  time.Time   `json:"created_at"`
}

// MemoryKind classifies a conversation memory.
type MemoryKind string

const (
	MemoryPreference  MemoryKind = "preference"
	MemoryGoal        MemoryKind = "goal"
	MemoryFact        MemoryKind = "fact"
	MemoryAchievement MemoryKind = "achievement"
	MemorySummary     MemoryKind = "summary"
)

// ConversationMemory is a fragment of a chat kept for later context, scored
// by importance in [0, 1].
type ConversationMemory struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	Kind           MemoryKind `json:"kind"`
	Content        string     `json:"content"`
	Importance     float64    `json:"importance"`
	Keywords       []string   `json:"keywords"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UserProfile accumulates what visitors have said about themselves across
// sessions.
type UserProfile struct {
	VisitorID   string    `json:"visitor_id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Company     string    `json:"company,omitempty"`
	Role        string    `json:"role,omitempty"`
	Location    string    `json:"location,omitempty"`
	Interests   []string  `json:"interests"`
	Preferences []string  `json:"preferences"`
	Goals       []string  `json:"goals"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Counts summarizes table sizes for the admin dashboard.
type Counts struct {
	CaseStudies    int `json:"case_studies"`
	Experience     int `json:"experience"`
	CoreValues     int `json:"core_values"`
	Images         int `json:"images"`
	ContactsNew    int `json:"contacts_new"`
	ContactsTotal  int `json:"contacts_total"`
	Documents      int `json:"documents"`
	DocumentFailed int `json:"documents_failed"`
	Sessions       int `json:"sessions"`
	Memories       int `json:"memories"`
}
