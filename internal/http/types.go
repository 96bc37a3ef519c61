package http

import (
	"github.com/fyrsmithlabs/folio/internal/storage"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}

// LoginRequest exchanges the admin password for a token.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// ReorderRequest lists image IDs in their new display order.
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// ContactStatusRequest changes the triage state of a submission.
type ContactStatusRequest struct {
	Status storage.ContactStatus `json:"status"`
}

// AcceptedResponse acknowledges a contact submission.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the admin dashboard summary.
type StatusResponse struct {
	Version      string                       `json:"version,omitempty"`
	Counts       storage.Counts               `json:"counts"`
	LLMAvailable bool                         `json:"llm_available"`
	Collections  []vectorstore.CollectionInfo `json:"collections"`
	Chunks       int                          `json:"chunks"`
}

// SessionDetail is a session with its transcript and what was remembered.
type SessionDetail struct {
	Session  storage.ConversationSession   `json:"session"`
	Messages []storage.ConversationMessage `json:"messages"`
	Memories []storage.ConversationMemory  `json:"memories"`
	Profile  storage.UserProfile           `json:"profile"`
}

// countChunks sums stored chunks across collections.
func countChunks(cols []vectorstore.CollectionInfo) int {
	total := 0
	for _, c := range cols {
		total += c.Documents
	}
	return total
}
