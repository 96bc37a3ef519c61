// Package cms implements the admin content managers behind the portfolio
// site: case studies, the experience timeline, core values, images, SEO
// settings, the hero section and contact submissions.
package cms

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

// Store is the persistence the content managers need.
type Store interface {
	CreateContact(ctx context.Context, c storage.ContactSubmission) (storage.ContactSubmission, error)
	GetContact(ctx context.Context, id string) (storage.ContactSubmission, error)
	ListContacts(ctx context.Context, status storage.ContactStatus) ([]storage.ContactSubmission, error)
	UpdateContactStatus(ctx context.Context, id string, status storage.ContactStatus) error
	DeleteContact(ctx context.Context, id string) error

	CreateCaseStudy(ctx context.Context, c storage.CaseStudy) (storage.CaseStudy, error)
	GetCaseStudy(ctx context.Context, id string) (storage.CaseStudy, error)
	GetCaseStudyBySlug(ctx context.Context, slug string) (storage.CaseStudy, error)
	ListCaseStudies(ctx context.Context, publishedOnly bool) ([]storage.CaseStudy, error)
	UpdateCaseStudy(ctx context.Context, c storage.CaseStudy) (storage.CaseStudy, error)
	DeleteCaseStudy(ctx context.Context, id string) error

	CreateExperience(ctx context.Context, e storage.ExperienceEntry) (storage.ExperienceEntry, error)
	GetExperience(ctx context.Context, id string) (storage.ExperienceEntry, error)
	ListExperience(ctx context.Context) ([]storage.ExperienceEntry, error)
	UpdateExperience(ctx context.Context, e storage.ExperienceEntry) (storage.ExperienceEntry, error)
	DeleteExperience(ctx context.Context, id string) error

	CreateCoreValue(ctx context.Context, v storage.CoreValue) (storage.CoreValue, error)
	GetCoreValue(ctx context.Context, id string) (storage.CoreValue, error)
	ListCoreValues(ctx context.Context) ([]storage.CoreValue, error)
	UpdateCoreValue(ctx context.Context, v storage.CoreValue) (storage.CoreValue, error)
	DeleteCoreValue(ctx context.Context, id string) error

	CreateImage(ctx context.Context, img storage.PortfolioImage) (storage.PortfolioImage, error)
	GetImage(ctx context.Context, id string) (storage.PortfolioImage, error)
	ListImages(ctx context.Context, category string) ([]storage.PortfolioImage, error)
	UpdateImage(ctx context.Context, img storage.PortfolioImage) (storage.PortfolioImage, error)
	DeleteImage(ctx context.Context, id string) error
	ReorderImages(ctx context.Context, ids []string) error

	UpsertSeo(ctx context.Context, seo storage.SeoSettings) (storage.SeoSettings, error)
	GetSeo(ctx context.Context, page string) (storage.SeoSettings, error)
	ListSeo(ctx context.Context) ([]storage.SeoSettings, error)
	DeleteSeo(ctx context.Context, page string) error

	UpsertHero(ctx context.Context, h storage.HeroContent) (storage.HeroContent, error)
	GetHero(ctx context.Context) (storage.HeroContent, error)
}

// Service validates admin input and writes it through the Store.
type Service struct {
	store    Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates the content service.
func NewService(store Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Service{store: store, validate: v, logger: logger.Named("cms")}, nil
}

// NewValidator returns a validator that reports JSON field names and knows
// the "slug" tag.
func NewValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("slug", validateSlug); err != nil {
		return nil, err
	}
	return v, nil
}

// check trims the string fields of the input struct in place and then
// validates it, so limits and formats apply to the value that is stored.
func (s *Service) check(in any) error {
	trimFields(reflect.ValueOf(in))
	if err := s.validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	return nil
}

func trimFields(v reflect.Value) {
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// trimList drops blank entries and surrounding whitespace.
func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

const dateLayout = "2006-01-02"

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fieldError(field, "must be a date formatted as "+dateLayout)
	}
	return &t, nil
}
