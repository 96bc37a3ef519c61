package cms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/logging"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

// ErrSpam is returned for submissions that filled the honeypot field.
// Callers should answer as if the submission was accepted.
var ErrSpam = errors.New("submission rejected as spam")

// SubmitContact validates and stores a public contact form submission.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (storage.ContactSubmission, error) {
	if strings.TrimSpace(in.Website) != "" {
		s.logger.Warn("contact honeypot triggered")
		return storage.ContactSubmission{}, ErrSpam
	}
	if err := s.check(&in); err != nil {
		return storage.ContactSubmission{}, err
	}
	c, err := s.store.CreateContact(ctx, storage.ContactSubmission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Status:  storage.ContactNew,
	})
	if err != nil {
		return storage.ContactSubmission{}, fmt.Errorf("store contact submission: %w", err)
	}
	s.logger.Info("contact submission received", zap.String("id", c.ID), logging.Email("email", c.Email))
	return c, nil
}

// GetContact returns a submission by id.
func (s *Service) GetContact(ctx context.Context, id string) (storage.ContactSubmission, error) {
	return s.store.GetContact(ctx, id)
}

// ListContacts returns submissions, optionally filtered by status.
func (s *Service) ListContacts(ctx context.Context, status storage.ContactStatus) ([]storage.ContactSubmission, error) {
	if status != "" && !status.Valid() {
		return nil, fieldError("status", "must be one of new read archived")
	}
	return s.store.ListContacts(ctx, status)
}

// UpdateContactStatus moves a submission through triage.
func (s *Service) UpdateContactStatus(ctx context.Context, id string, status storage.ContactStatus) error {
	if !status.Valid() {
		return fieldError("status", "must be one of new read archived")
	}
	return s.store.UpdateContactStatus(ctx, id, status)
}

// DeleteContact removes a submission.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	return s.store.DeleteContact(ctx, id)
}
