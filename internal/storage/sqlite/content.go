package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

// CreateContact inserts one contact submission.
func (s *Store) CreateContact(ctx context.Context, c storage.ContactSubmission) (storage.ContactSubmission, error) {
	if err := s.ready(ctx); err != nil {
		return c, err
	}
	c.ID = newID(c.ID)
	if c.Status == "" {
		c.Status = storage.ContactNew
	}
	c.CreatedAt, c.UpdatedAt = stamp(c.CreatedAt, c.UpdatedAt, s.now())

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, name, email, subject, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Subject, c.Message, string(c.Status),
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return c, storage.ErrAlreadyExists
		}
		return c, fmt.Errorf("create contact submission: %w", err)
	}
	return c, nil
}

const contactColumns = `id, name, email, subject, message, status, created_at, updated_at`

func scanContact(row rowScanner) (storage.ContactSubmission, error) {
	var c storage.ContactSubmission
	var status string
	var created, updated int64
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &status, &created, &updated); err != nil {
		return c, err
	}
	c.Status = storage.ContactStatus(status)
	c.CreatedAt, c.UpdatedAt = fromMillis(created), fromMillis(updated)
	return c, nil
}

// GetContact returns one contact submission.
func (s *Store) GetContact(ctx context.Context, id string) (storage.ContactSubmission, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ContactSubmission{}, err
	}
	c, err := scanContact(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions WHERE id = ?`, id))
	if err != nil {
		return c, notFound(err)
	}
	return c, nil
}

// ListContacts returns submissions newest first, optionally filtered by status.
func (s *Store) ListContacts(ctx context.Context, status storage.ContactStatus) ([]storage.ContactSubmission, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + contactColumns + ` FROM contact_submissions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	out := []storage.ContactSubmission{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateContactStatus changes the triage status of a submission.
func (s *Store) UpdateContactStatus(ctx context.Context, id string, status storage.ContactStatus) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "update contact status",
		`UPDATE contact_submissions SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(s.now()), id)
}

// DeleteContact removes a submission.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete contact submission", `DELETE FROM contact_submissions WHERE id = ?`, id)
}

const caseStudyColumns = `id, slug, title, summary, challenge, solution, outcome, technologies,
  cover_image_url, featured, published, sort_order, created_at, updated_at`

func scanCaseStudy(row rowScanner) (storage.CaseStudy, error) {
	var c storage.CaseStudy
	var techs string
	var featured, published int
	var created, updated int64
	err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.Summary, &c.Challenge, &c.Solution, &c.Outcome,
		&techs, &c.CoverImageURL, &featured, &published, &c.SortOrder, &created, &updated)
	if err != nil {
		return c, err
	}
	c.Technologies = decodeList(techs)
	c.Featured, c.Published = featured == 1, published == 1
	c.CreatedAt, c.UpdatedAt = fromMillis(created), fromMillis(updated)
	return c, nil
}

// CreateCaseStudy inserts one case study. Slugs are unique.
func (s *Store) CreateCaseStudy(ctx context.Context, c storage.CaseStudy) (storage.CaseStudy, error) {
	if err := s.ready(ctx); err != nil {
		return c, err
	}
	if strings.TrimSpace(c.Slug) == "" {
		return c, fmt.Errorf("case study slug is required")
	}
	c.ID = newID(c.ID)
	c.CreatedAt, c.UpdatedAt = stamp(c.CreatedAt, c.UpdatedAt, s.now())
	if c.Technologies == nil {
		c.Technologies = []string{}
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO case_studies (`+caseStudyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Title, c.Summary, c.Challenge, c.Solution, c.Outcome, encodeList(c.Technologies),
		c.CoverImageURL, boolInt(c.Featured), boolInt(c.Published), c.SortOrder,
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return c, storage.ErrAlreadyExists
		}
		return c, fmt.Errorf("create case study: %w", err)
	}
	return c, nil
}

// GetCaseStudy returns a case study by id.
func (s *Store) GetCaseStudy(ctx context.Context, id string) (storage.CaseStudy, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CaseStudy{}, err
	}
	c, err := scanCaseStudy(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+caseStudyColumns+` FROM case_studies WHERE id = ?`, id))
	return c, notFound(err)
}

// GetCaseStudyBySlug returns a case study by slug.
func (s *Store) GetCaseStudyBySlug(ctx context.Context, slug string) (storage.CaseStudy, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CaseStudy{}, err
	}
	c, err := scanCaseStudy(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+caseStudyColumns+` FROM case_studies WHERE slug = ?`, slug))
	return c, notFound(err)
}

// ListCaseStudies returns case studies ordered for display.
func (s *Store) ListCaseStudies(ctx context.Context, publishedOnly bool) ([]storage.CaseStudy, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + caseStudyColumns + ` FROM case_studies`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY featured DESC, sort_order, created_at DESC`

	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list case studies: %w", err)
	}
	defer rows.Close()

	out := []storage.CaseStudy{}
	for rows.Next() {
		c, err := scanCaseStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case study: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCaseStudy replaces the mutable fields of a case study.
func (s *Store) UpdateCaseStudy(ctx context.Context, c storage.CaseStudy) (storage.CaseStudy, error) {
	if err := s.ready(ctx); err != nil {
		return c, err
	}
	c.UpdatedAt = s.now()
	err := s.execAffectingOne(ctx, "update case study",
		`UPDATE case_studies SET slug = ?, title = ?, summary = ?, challenge = ?, solution = ?, outcome = ?,
		   technologies = ?, cover_image_url = ?, featured = ?, published = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		c.Slug, c.Title, c.Summary, c.Challenge, c.Solution, c.Outcome, encodeList(c.Technologies),
		c.CoverImageURL, boolInt(c.Featured), boolInt(c.Published), c.SortOrder, toMillis(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return c, err
	}
	return s.GetCaseStudy(ctx, c.ID)
}

// DeleteCaseStudy removes a case study.
func (s *Store) DeleteCaseStudy(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete case study", `DELETE FROM case_studies WHERE id = ?`, id)
}

const experienceColumns = `id, company, role, location, start_date, end_date, current, description,
  highlights, sort_order, created_at, updated_at`

func scanExperience(row rowScanner) (storage.ExperienceEntry, error) {
	var e storage.ExperienceEntry
	var start, created, updated int64
	var end sql.NullInt64
	var current int
	var highlights string
	err := row.Scan(&e.ID, &e.Company, &e.Role, &e.Location, &start, &end, &current, &e.Description,
		&highlights, &e.SortOrder, &created, &updated)
	if err != nil {
		return e, err
	}
	e.StartDate = fromMillis(start)
	e.EndDate = fromNullMillis(end)
	e.Current = current == 1
	e.Highlights = decodeList(highlights)
	e.CreatedAt, e.UpdatedAt = fromMillis(created), fromMillis(updated)
	return e, nil
}

// CreateExperience inserts one timeline entry.
func (s *Store) CreateExperience(ctx context.Context, e storage.ExperienceEntry) (storage.ExperienceEntry, error) {
	if err := s.ready(ctx); err != nil {
		return e, err
	}
	e.ID = newID(e.ID)
	e.CreatedAt, e.UpdatedAt = stamp(e.CreatedAt, e.UpdatedAt, s.now())
	if e.Highlights == nil {
		e.Highlights = []string{}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO experience_entries (`+experienceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Company, e.Role, e.Location, toMillis(e.StartDate), nullMillis(e.EndDate), boolInt(e.Current),
		e.Description, encodeList(e.Highlights), e.SortOrder, toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return e, storage.ErrAlreadyExists
		}
		return e, fmt.Errorf("create experience entry: %w", err)
	}
	return e, nil
}

// GetExperience returns one timeline entry.
func (s *Store) GetExperience(ctx context.Context, id string) (storage.ExperienceEntry, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ExperienceEntry{}, err
	}
	e, err := scanExperience(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+experienceColumns+` FROM experience_entries WHERE id = ?`, id))
	return e, notFound(err)
}

// ListExperience returns the timeline, current positions first, then newest
// start date first.
func (s *Store) ListExperience(ctx context.Context) ([]storage.ExperienceEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+experienceColumns+` FROM experience_entries ORDER BY current DESC, start_date DESC, sort_order`)
	if err != nil {
		return nil, fmt.Errorf("list experience entries: %w", err)
	}
	defer rows.Close()

	out := []storage.ExperienceEntry{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experience entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateExperience replaces the mutable fields of a timeline entry.
func (s *Store) UpdateExperience(ctx context.Context, e storage.ExperienceEntry) (storage.ExperienceEntry, error) {
	if err := s.ready(ctx); err != nil {
		return e, err
	}
	err := s.execAffectingOne(ctx, "update experience entry",
		`UPDATE experience_entries SET company = ?, role = ?, location = ?, start_date = ?, end_date = ?,
		   current = ?, description = ?, highlights = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		e.Company, e.Role, e.Location, toMillis(e.StartDate), nullMillis(e.EndDate), boolInt(e.Current),
		e.Description, encodeList(e.Highlights), e.SortOrder, toMillis(s.now()), e.ID,
	)
	if err != nil {
		return e, err
	}
	return s.GetExperience(ctx, e.ID)
}

// DeleteExperience removes a timeline entry.
func (s *Store) DeleteExperience(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete experience entry", `DELETE FROM experience_entries WHERE id = ?`, id)
}

const coreValueColumns = `id, title, description, icon, sort_order, created_at, updated_at`

func scanCoreValue(row rowScanner) (storage.CoreValue, error) {
	var v storage.CoreValue
	var created, updated int64
	if err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Icon, &v.SortOrder, &created, &updated); err != nil {
		return v, err
	}
	v.CreatedAt, v.UpdatedAt = fromMillis(created), fromMillis(updated)
	return v, nil
}

// CreateCoreValue inserts one core value.
func (s *Store) CreateCoreValue(ctx context.Context, v storage.CoreValue) (storage.CoreValue, error) {
	if err := s.ready(ctx); err != nil {
		return v, err
	}
	v.ID = newID(v.ID)
	v.CreatedAt, v.UpdatedAt = stamp(v.CreatedAt, v.UpdatedAt, s.now())
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO core_values (`+coreValueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.Description, v.Icon, v.SortOrder, toMillis(v.CreatedAt), toMillis(v.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return v, storage.ErrAlreadyExists
		}
		return v, fmt.Errorf("create core value: %w", err)
	}
	return v, nil
}

// GetCoreValue returns one core value.
func (s *Store) GetCoreValue(ctx context.Context, id string) (storage.CoreValue, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CoreValue{}, err
	}
	v, err := scanCoreValue(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+coreValueColumns+` FROM core_values WHERE id = ?`, id))
	return v, notFound(err)
}

// ListCoreValues returns core values by sort order.
func (s *Store) ListCoreValues(ctx context.Context) ([]storage.CoreValue, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+coreValueColumns+` FROM core_values ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list core values: %w", err)
	}
	defer rows.Close()

	out := []storage.CoreValue{}
	for rows.Next() {
		v, err := scanCoreValue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan core value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateCoreValue replaces the mutable fields of a core value.
func (s *Store) UpdateCoreValue(ctx context.Context, v storage.CoreValue) (storage.CoreValue, error) {
	if err := s.ready(ctx); err != nil {
		return v, err
	}
	err := s.execAffectingOne(ctx, "update core value",
		`UPDATE core_values SET title = ?, description = ?, icon = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		v.Title, v.Description, v.Icon, v.SortOrder, toMillis(s.now()), v.ID)
	if err != nil {
		return v, err
	}
	return s.GetCoreValue(ctx, v.ID)
}

// DeleteCoreValue removes a core value.
func (s *Store) DeleteCoreValue(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete core value", `DELETE FROM core_values WHERE id = ?`, id)
}

const imageColumns = `id, url, alt_text, caption, category, sort_order, created_at, updated_at`

func scanImage(row rowScanner) (storage.PortfolioImage, error) {
	var img storage.PortfolioImage
	var created, updated int64
	if err := row.Scan(&img.ID, &img.URL, &img.AltText, &img.Caption, &img.Category, &img.SortOrder, &created, &updated); err != nil {
		return img, err
	}
	img.CreatedAt, img.UpdatedAt = fromMillis(created), fromMillis(updated)
	return img, nil
}

// CreateImage inserts one gallery image.
func (s *Store) CreateImage(ctx context.Context, img storage.PortfolioImage) (storage.PortfolioImage, error) {
	if err := s.ready(ctx); err != nil {
		return img, err
	}
	img.ID = newID(img.ID)
	img.CreatedAt, img.UpdatedAt = stamp(img.CreatedAt, img.UpdatedAt, s.now())
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO portfolio_images (`+imageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.URL, img.AltText, img.Caption, img.Category, img.SortOrder,
		toMillis(img.CreatedAt), toMillis(img.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return img, storage.ErrAlreadyExists
		}
		return img, fmt.Errorf("create portfolio image: %w", err)
	}
	return img, nil
}

// GetImage returns one gallery image.
func (s *Store) GetImage(ctx context.Context, id string) (storage.PortfolioImage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.PortfolioImage{}, err
	}
	img, err := scanImage(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM portfolio_images WHERE id = ?`, id))
	return img, notFound(err)
}

// ListImages returns images by sort order, optionally filtered by category.
func (s *Store) ListImages(ctx context.Context, category string) ([]storage.PortfolioImage, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + imageColumns + ` FROM portfolio_images`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list portfolio images: %w", err)
	}
	defer rows.Close()

	out := []storage.PortfolioImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// UpdateImage replaces the mutable fields of an image.
func (s *Store) UpdateImage(ctx context.Context, img storage.PortfolioImage) (storage.PortfolioImage, error) {
	if err := s.ready(ctx); err != nil {
		return img, err
	}
	err := s.execAffectingOne(ctx, "update portfolio image",
		`UPDATE portfolio_images SET url = ?, alt_text = ?, caption = ?, category = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		img.URL, img.AltText, img.Caption, img.Category, img.SortOrder, toMillis(s.now()), img.ID)
	if err != nil {
		return img, err
	}
	return s.GetImage(ctx, img.ID)
}

// DeleteImage removes an image.
func (s *Store) DeleteImage(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete portfolio image", `DELETE FROM portfolio_images WHERE id = ?`, id)
}

// ReorderImages assigns sort_order by position in ids inside one
// transaction. Every id must exist.
func (s *Store) ReorderImages(ctx context.Context, ids []string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := toMillis(s.now())
	for i, id := range ids {
		res, err := tx.ExecContext(ctx,
			`UPDATE portfolio_images SET sort_order = ?, updated_at = ? WHERE id = ?`, i, now, id)
		if err != nil {
			return fmt.Errorf("reorder image %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("image %s: %w", id, storage.ErrNotFound)
		}
	}
	return tx.Commit()
}

const seoColumns = `page, title, description, keywords, og_image_url, canonical_url, version, updated_at`

func scanSeo(row rowScanner) (storage.SeoSettings, error) {
	var seo storage.SeoSettings
	var keywords string
	var updated int64
	if err := row.Scan(&seo.Page, &seo.Title, &seo.Description, &keywords, &seo.OGImageURL,
		&seo.CanonicalURL, &seo.Version, &updated); err != nil {
		return seo, err
	}
	seo.Keywords = decodeList(keywords)
	seo.UpdatedAt = fromMillis(updated)
	return seo, nil
}

// UpsertSeo writes the settings for a page, incrementing its version.
func (s *Store) UpsertSeo(ctx context.Context, seo storage.SeoSettings) (storage.SeoSettings, error) {
	if err := s.ready(ctx); err != nil {
		return seo, err
	}
	if strings.TrimSpace(seo.Page) == "" {
		return seo, fmt.Errorf("seo page is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO seo_settings (`+seoColumns+`) VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT (page) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   keywords = excluded.keywords,
		   og_image_url = excluded.og_image_url,
		   canonical_url = excluded.canonical_url,
		   version = seo_settings.version + 1,
		   updated_at = excluded.updated_at`,
		seo.Page, seo.Title, seo.Description, encodeList(seo.Keywords), seo.OGImageURL, seo.CanonicalURL,
		toMillis(s.now()),
	)
	if err != nil {
		return seo, fmt.Errorf("upsert seo settings: %w", err)
	}
	return s.GetSeo(ctx, seo.Page)
}

// GetSeo returns the settings for a page.
func (s *Store) GetSeo(ctx context.Context, page string) (storage.SeoSettings, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SeoSettings{}, err
	}
	seo, err := scanSeo(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+seoColumns+` FROM seo_settings WHERE page = ?`, page))
	return seo, notFound(err)
}

// ListSeo returns the settings of every page.
func (s *Store) ListSeo(ctx context.Context) ([]storage.SeoSettings, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+seoColumns+` FROM seo_settings ORDER BY page`)
	if err != nil {
		return nil, fmt.Errorf("list seo settings: %w", err)
	}
	defer rows.Close()

	out := []storage.SeoSettings{}
	for rows.Next() {
		seo, err := scanSeo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seo settings: %w", err)
		}
		out = append(out, seo)
	}
	return out, rows.Err()
}

// DeleteSeo removes the settings for a page.
func (s *Store) DeleteSeo(ctx context.Context, page string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete seo settings", `DELETE FROM seo_settings WHERE page = ?`, page)
}

// UpsertHero writes the hero section, incrementing its version.
func (s *Store) UpsertHero(ctx context.Context, h storage.HeroContent) (storage.HeroContent, error) {
	if err := s.ready(ctx); err != nil {
		return h, err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO hero_content (id, headline, subheadline, cta_text, cta_url, background_url, version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   headline = excluded.headline,
		   subheadline = excluded.subheadline,
		   cta_text = excluded.cta_text,
		   cta_url = excluded.cta_url,
		   background_url = excluded.background_url,
		   version = hero_content.version + 1,
		   updated_at = excluded.updated_at`,
		storage.HeroID, h.Headline, h.Subheadline, h.CTAText, h.CTAURL, h.BackgroundURL, toMillis(s.now()),
	)
	if err != nil {
		return h, fmt.Errorf("upsert hero content: %w", err)
	}
	return s.GetHero(ctx)
}

// GetHero returns the hero section.
func (s *Store) GetHero(ctx context.Context) (storage.HeroContent, error) {
	if err := s.ready(ctx); err != nil {
		return storage.HeroContent{}, err
	}
	var h storage.HeroContent
	var updated int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, headline, subheadline, cta_text, cta_url, background_url, version, updated_at
		 FROM hero_content WHERE id = ?`, storage.HeroID).
		Scan(&h.ID, &h.Headline, &h.Subheadline, &h.CTAText, &h.CTAURL, &h.BackgroundURL, &h.Version, &updated)
	if err != nil {
		return h, notFound(err)
	}
	h.UpdatedAt = fromMillis(updated)
	return h, nil
}
