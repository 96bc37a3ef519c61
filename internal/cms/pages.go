package cms

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

func (in CoreValueInput) apply(v storage.CoreValue) storage.CoreValue {
	v.Title = strings.TrimSpace(in.Title)
	v.Description = in.Description
	v.Icon = strings.TrimSpace(in.Icon)
	v.SortOrder = in.SortOrder
	return v
}

// CreateCoreValue validates and stores a core value.
func (s *Service) CreateCoreValue(ctx context.Context, in CoreValueInput) (storage.CoreValue, error) {
	if err := s.check(&in); err != nil {
		return storage.CoreValue{}, err
	}
	return s.store.CreateCoreValue(ctx, in.apply(storage.CoreValue{}))
}

// GetCoreValue returns a core value by id.
func (s *Service) GetCoreValue(ctx context.Context, id string) (storage.CoreValue, error) {
	return s.store.GetCoreValue(ctx, id)
}

// ListCoreValues returns core values in display order.
func (s *Service) ListCoreValues(ctx context.Context) ([]storage.CoreValue, error) {
	return s.store.ListCoreValues(ctx)
}

// UpdateCoreValue replaces a core value.
func (s *Service) UpdateCoreValue(ctx context.Context, id string, in CoreValueInput) (storage.CoreValue, error) {
	if err := s.check(&in); err != nil {
		return storage.CoreValue{}, err
	}
	current, err := s.store.GetCoreValue(ctx, id)
	if err != nil {
		return storage.CoreValue{}, err
	}
	return s.store.UpdateCoreValue(ctx, in.apply(current))
}

// DeleteCoreValue removes a core value.
func (s *Service) DeleteCoreValue(ctx context.Context, id string) error {
	return s.store.DeleteCoreValue(ctx, id)
}

func (in ImageInput) apply(img storage.PortfolioImage) storage.PortfolioImage {
	img.URL = strings.TrimSpace(in.URL)
	img.AltText = in.AltText
	img.Caption = in.Caption
	img.Category = strings.ToLower(strings.TrimSpace(in.Category))
	img.SortOrder = in.SortOrder
	return img
}

// CreateImage validates and stores a gallery image.
func (s *Service) CreateImage(ctx context.Context, in ImageInput) (storage.PortfolioImage, error) {
	if err := s.check(&in); err != nil {
		return storage.PortfolioImage{}, err
	}
	return s.store.CreateImage(ctx, in.apply(storage.PortfolioImage{}))
}

// GetImage returns a gallery image by id.
func (s *Service) GetImage(ctx context.Context, id string) (storage.PortfolioImage, error) {
	return s.store.GetImage(ctx, id)
}

// ListImages returns images in display order, optionally for one category.
func (s *Service) ListImages(ctx context.Context, category string) ([]storage.PortfolioImage, error) {
	return s.store.ListImages(ctx, strings.ToLower(strings.TrimSpace(category)))
}

// UpdateImage replaces a gallery image.
func (s *Service) UpdateImage(ctx context.Context, id string, in ImageInput) (storage.PortfolioImage, error) {
	if err := s.check(&in); err != nil {
		return storage.PortfolioImage{}, err
	}
	current, err := s.store.GetImage(ctx, id)
	if err != nil {
		return storage.PortfolioImage{}, err
	}
	return s.store.UpdateImage(ctx, in.apply(current))
}

// DeleteImage removes a gallery image.
func (s *Service) DeleteImage(ctx context.Context, id string) error {
	return s.store.DeleteImage(ctx, id)
}

// ReorderImages sets the display order to the order of ids.
func (s *Service) ReorderImages(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyReorder
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fieldError("ids", fmt.Sprintf("contains %s more than once", id))
		}
		seen[id] = struct{}{}
	}
	if err := s.store.ReorderImages(ctx, ids); err != nil {
		return fmt.Errorf("reorder images: %w", err)
	}
	s.logger.Info("images reordered", zap.Int("count", len(ids)))
	return nil
}

// UpsertSeo writes the metadata of page, bumping its version.
func (s *Service) UpsertSeo(ctx context.Context, page string, in SeoInput) (storage.SeoSettings, error) {
	page = strings.ToLower(strings.TrimSpace(page))
	if !ValidSlug(page) {
		return storage.SeoSettings{}, fieldError("page", "must contain only lower-case letters, digits and hyphens")
	}
	if err := s.check(&in); err != nil {
		return storage.SeoSettings{}, err
	}
	return s.store.UpsertSeo(ctx, storage.SeoSettings{
		Page:         page,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Keywords:     trimList(in.Keywords),
		OGImageURL:   in.OGImageURL,
		CanonicalURL: in.CanonicalURL,
	})
}

// GetSeo returns the metadata of page.
func (s *Service) GetSeo(ctx context.Context, page string) (storage.SeoSettings, error) {
	return s.store.GetSeo(ctx, strings.ToLower(strings.TrimSpace(page)))
}

// ListSeo returns the metadata of every page.
func (s *Service) ListSeo(ctx context.Context) ([]storage.SeoSettings, error) {
	return s.store.ListSeo(ctx)
}

// DeleteSeo removes the metadata of page.
func (s *Service) DeleteSeo(ctx context.Context, page string) error {
	return s.store.DeleteSeo(ctx, strings.ToLower(strings.TrimSpace(page)))
}

// GetHero returns the hero section.
func (s *Service) GetHero(ctx context.Context) (storage.HeroContent, error) {
	return s.store.GetHero(ctx)
}

// UpdateHero replaces the hero section, bumping its version.
func (s *Service) UpdateHero(ctx context.Context, in HeroInput) (storage.HeroContent, error) {
	if err := s.check(&in); err != nil {
		return storage.HeroContent{}, err
	}
	h, err := s.store.UpsertHero(ctx, storage.HeroContent{
		Headline:      strings.TrimSpace(in.Headline),
		Subheadline:   in.Subheadline,
		CTAText:       in.CTAText,
		CTAURL:        in.CTAURL,
		BackgroundURL: in.BackgroundURL,
	})
	if err != nil {
		return storage.HeroContent{}, fmt.Errorf("update hero: %w", err)
	}
	s.logger.Info("hero updated", zap.Int("version", h.Version))
	return h, nil
}
