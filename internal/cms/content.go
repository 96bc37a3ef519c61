package cms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

// maxSlugAttempts bounds the numeric suffixes tried for a derived slug.
const maxSlugAttempts = 50

func (in CaseStudyInput) apply(c storage.CaseStudy) storage.CaseStudy {
	c.Slug = strings.TrimSpace(in.Slug)
	c.Title = strings.TrimSpace(in.Title)
	c.Summary = in.Summary
	c.Challenge = in.Challenge
	c.Solution = in.Solution
	c.Outcome = in.Outcome
	c.Technologies = trimList(in.Technologies)
	c.CoverImageURL = in.CoverImageURL
	c.Featured = in.Featured
	c.Published = in.Published
	c.SortOrder = in.SortOrder
	return c
}

// CreateCaseStudy validates and stores a case study. A slug derived from the
// title gets a numeric suffix when taken; an explicit slug that is taken
// fails with storage.ErrAlreadyExists.
func (s *Service) CreateCaseStudy(ctx context.Context, in CaseStudyInput) (storage.CaseStudy, error) {
	if err := s.check(&in); err != nil {
		return storage.CaseStudy{}, err
	}
	c := in.apply(storage.CaseStudy{})
	derived := c.Slug == ""
	if derived {
		slug, err := s.freeSlug(ctx, Slugify(c.Title), "")
		if err != nil {
			return storage.CaseStudy{}, err
		}
		c.Slug = slug
	}

	created, err := s.store.CreateCaseStudy(ctx, c)
	if err != nil {
		return storage.CaseStudy{}, fmt.Errorf("create case study %q: %w", c.Slug, err)
	}
	s.logger.Info("case study created", zap.String("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// freeSlug returns base, or base-N for the first N not used by another case
// study than selfID.
func (s *Service) freeSlug(ctx context.Context, base, selfID string) (string, error) {
	if base == "" {
		return "", fieldError("title", "must contain at least one letter or digit")
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		existing, err := s.store.GetCaseStudyBySlug(ctx, candidate)
		if errors.Is(err, storage.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if existing.ID == selfID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug %q: %w", base, storage.ErrAlreadyExists)
}

// GetCaseStudy returns a case study by id.
func (s *Service) GetCaseStudy(ctx context.Context, id string) (storage.CaseStudy, error) {
	return s.store.GetCaseStudy(ctx, id)
}

// GetPublishedCaseStudy returns a published case study by slug; drafts are
// reported as not found.
func (s *Service) GetPublishedCaseStudy(ctx context.Context, slug string) (storage.CaseStudy, error) {
	c, err := s.store.GetCaseStudyBySlug(ctx, slug)
	if err != nil {
		return storage.CaseStudy{}, err
	}
	if !c.Published {
		return storage.CaseStudy{}, storage.ErrNotFound
	}
	return c, nil
}

// ListCaseStudies returns case studies, featured first.
func (s *Service) ListCaseStudies(ctx context.Context, publishedOnly bool) ([]storage.CaseStudy, error) {
	return s.store.ListCaseStudies(ctx, publishedOnly)
}

// UpdateCaseStudy replaces the editable fields of a case study.
func (s *Service) UpdateCaseStudy(ctx context.Context, id string, in CaseStudyInput) (storage.CaseStudy, error) {
	if err := s.check(&in); err != nil {
		return storage.CaseStudy{}, err
	}
	current, err := s.store.GetCaseStudy(ctx, id)
	if err != nil {
		return storage.CaseStudy{}, err
	}
	c := in.apply(current)
	if c.Slug == "" {
		slug, err := s.freeSlug(ctx, Slugify(c.Title), id)
		if err != nil {
			return storage.CaseStudy{}, err
		}
		c.Slug = slug
	}
	updated, err := s.store.UpdateCaseStudy(ctx, c)
	if err != nil {
		return storage.CaseStudy{}, fmt.Errorf("update case study %s: %w", id, err)
	}
	return updated, nil
}

// DeleteCaseStudy removes a case study.
func (s *Service) DeleteCaseStudy(ctx context.Context, id string) error {
	if err := s.store.DeleteCaseStudy(ctx, id); err != nil {
		return err
	}
	s.logger.Info("case study deleted", zap.String("id", id))
	return nil
}

func (in ExperienceInput) apply(e storage.ExperienceEntry) (storage.ExperienceEntry, error) {
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return e, err
	}
	if start == nil {
		return e, fieldError("start_date", "is required")
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return e, err
	}
	if in.Current {
		end = nil
	}
	if end != nil && end.Before(*start) {
		return e, &ValidationError{Fields: map[string]string{"end_date": ErrInvalidDateRange.Error()}}
	}

	e.Company = strings.TrimSpace(in.Company)
	e.Role = strings.TrimSpace(in.Role)
	e.Location = strings.TrimSpace(in.Location)
	e.StartDate = *start
	e.EndDate = end
	e.Current = in.Current
	e.Description = in.Description
	e.Highlights = trimList(in.Highlights)
	e.SortOrder = in.SortOrder
	return e, nil
}

// CreateExperience validates and stores a timeline entry. Current entries
// never carry an end date.
func (s *Service) CreateExperience(ctx context.Context, in ExperienceInput) (storage.ExperienceEntry, error) {
	if err := s.check(&in); err != nil {
		return storage.ExperienceEntry{}, err
	}
	e, err := in.apply(storage.ExperienceEntry{})
	if err != nil {
		return storage.ExperienceEntry{}, err
	}
	created, err := s.store.CreateExperience(ctx, e)
	if err != nil {
		return storage.ExperienceEntry{}, fmt.Errorf("create experience: %w", err)
	}
	s.logger.Info("experience created", zap.String("id", created.ID), zap.String("company", created.Company))
	return created, nil
}

// GetExperience returns a timeline entry by id.
func (s *Service) GetExperience(ctx context.Context, id string) (storage.ExperienceEntry, error) {
	return s.store.GetExperience(ctx, id)
}

// ListExperience returns the timeline, current roles first then newest first.
func (s *Service) ListExperience(ctx context.Context) ([]storage.ExperienceEntry, error) {
	return s.store.ListExperience(ctx)
}

// UpdateExperience replaces a timeline entry.
func (s *Service) UpdateExperience(ctx context.Context, id string, in ExperienceInput) (storage.ExperienceEntry, error) {
	if err := s.check(&in); err != nil {
		return storage.ExperienceEntry{}, err
	}
	current, err := s.store.GetExperience(ctx, id)
	if err != nil {
		return storage.ExperienceEntry{}, err
	}
	e, err := in.apply(current)
	if err != nil {
		return storage.ExperienceEntry{}, err
	}
	return s.store.UpdateExperience(ctx, e)
}

// DeleteExperience removes a timeline entry.
func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	return s.store.DeleteExperience(ctx, id)
}
