package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

const (
	maxPersonaCaseStudies = 6
	maxPersonaTimeline    = 8
	maxPersonaValues      = 6
)

// Content is the published portfolio the assistant speaks for.
type Content interface {
	GetHero(ctx context.Context) (storage.HeroContent, error)
	ListCaseStudies(ctx context.Context, publishedOnly bool) ([]storage.CaseStudy, error)
	ListExperience(ctx context.Context) ([]storage.ExperienceEntry, error)
	ListCoreValues(ctx context.Context) ([]storage.CoreValue, error)
}

// Persona renders the portfolio owner's public profile for the system
// prompt. Missing sections are skipped.
func Persona(ctx context.Context, content Content) (string, error) {
	var sections []string

	hero, err := content.GetHero(ctx)
	switch {
	case err == nil:
		if s := strings.TrimSpace(strings.Join(nonEmpty(hero.Headline, hero.Subheadline), "\n")); s != "" {
			sections = append(sections, "About the owner:\n"+s)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return "", fmt.Errorf("load hero: %w", err)
	}

	studies, err := content.ListCaseStudies(ctx, true)
	if err != nil {
		return "", fmt.Errorf("load case studies: %w", err)
	}
	if len(studies) > 0 {
		var b strings.Builder
		b.WriteString("Case studies:")
		for i, cs := range studies {
			if i == maxPersonaCaseStudies {
				break
			}
			fmt.Fprintf(&b, "\n- %s", cs.Title)
			if cs.Summary != "" {
				fmt.Fprintf(&b, ": %s", cs.Summary)
			}
			if cs.Outcome != "" {
				fmt.Fprintf(&b, " Outcome: %s", cs.Outcome)
			}
			if len(cs.Technologies) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(cs.Technologies, ", "))
			}
		}
		sections = append(sections, b.String())
	}

	timeline, err := content.ListExperience(ctx)
	if err != nil {
		return "", fmt.Errorf("load timeline: %w", err)
	}
	if len(timeline) > 0 {
		var b strings.Builder
		b.WriteString("Experience:")
		for i, e := range timeline {
			if i == maxPersonaTimeline {
				break
			}
			fmt.Fprintf(&b, "\n- %s at %s (%s)", e.Role, e.Company, period(e))
			if len(e.Highlights) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(e.Highlights, "; "))
			}
		}
		sections = append(sections, b.String())
	}

	values, err := content.ListCoreValues(ctx)
	if err != nil {
		return "", fmt.Errorf("load core values: %w", err)
	}
	if len(values) > 0 {
		var b strings.Builder
		b.WriteString("Core values:")
		for i, v := range values {
			if i == maxPersonaValues {
				break
			}
			fmt.Fprintf(&b, "\n- %s", v.Title)
			if v.Description != "" {
				fmt.Fprintf(&b, ": %s", v.Description)
			}
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n"), nil
}

func period(e storage.ExperienceEntry) string {
	start := e.StartDate.Format("Jan 2006")
	switch {
	case e.Current || e.EndDate == nil:
		return start + " - present"
	default:
		return start + " - " + e.EndDate.Format("Jan 2006")
	}
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
