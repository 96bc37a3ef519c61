package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

func TestContactLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	created, err := store.CreateContact(ctx, storage.ContactSubmission{
		Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Let's talk",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, storage.ContactNew, created.Status)

	require.NoError(t, store.UpdateContactStatus(ctx, created.ID, storage.ContactRead))

	got, err := store.GetContact(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.ContactRead, got.Status)
	assert.Equal(t, "Let's talk", got.Message)

	unread, err := store.ListContacts(ctx, storage.ContactNew)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := store.ListContacts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.DeleteContact(ctx, created.ID))
	assert.ErrorIs(t, store.DeleteContact(ctx, created.ID), storage.ErrNotFound)
	assert.ErrorIs(t, store.UpdateContactStatus(ctx, "missing", storage.ContactRead), storage.ErrNotFound)
}

func TestCaseStudies(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	draft, err := store.CreateCaseStudy(ctx, storage.CaseStudy{
		Slug: "draft", Title: "Draft", Technologies: []string{"Go"},
	})
	require.NoError(t, err)
	_, err = store.CreateCaseStudy(ctx, storage.CaseStudy{
		Slug: "live", Title: "Live", Published: true, Featured: true, Technologies: []string{"Go", "SQLite"},
	})
	require.NoError(t, err)

	_, err = store.CreateCaseStudy(ctx, storage.CaseStudy{Slug: "live", Title: "Duplicate"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = store.CreateCaseStudy(ctx, storage.CaseStudy{Title: "No slug"})
	assert.Error(t, err)

	published, err := store.ListCaseStudies(ctx, true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "live", published[0].Slug)
	assert.Equal(t, []string{"Go", "SQLite"}, published[0].Technologies)

	bySlug, err := store.GetCaseStudyBySlug(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, bySlug.ID)

	draft.Title = "Draft v2"
	draft.Published = true
	updated, err := store.UpdateCaseStudy(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "Draft v2", updated.Title)
	assert.True(t, updated.Published)

	draft.Slug = "live"
	_, err = store.UpdateCaseStudy(ctx, draft)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = store.UpdateCaseStudy(ctx, storage.CaseStudy{ID: "missing", Slug: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.DeleteCaseStudy(ctx, draft.ID))
	_, err = store.GetCaseStudy(ctx, draft.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExperienceOrdering(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	end := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.CreateExperience(ctx, storage.ExperienceEntry{
		Company: "Old Co", Role: "Engineer",
		StartDate: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: &end,
	})
	require.NoError(t, err)
	_, err = store.CreateExperience(ctx, storage.ExperienceEntry{
		Company: "Now Co", Role: "Staff Engineer", Current: true,
		StartDate: time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), Highlights: []string{"Led platform team"},
	})
	require.NoError(t, err)

	entries, err := store.ListExperience(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Now Co", entries[0].Company)
	assert.Nil(t, entries[0].EndDate)
	assert.Equal(t, []string{"Led platform team"}, entries[0].Highlights)
	require.NotNil(t, entries[1].EndDate)
	assert.True(t, end.Equal(*entries[1].EndDate))
}

func TestImagesReorder(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	var ids []string
	for _, url := range []string{"https://img/a.png", "https://img/b.png", "https://img/c.png"} {
		img, err := store.CreateImage(ctx, storage.PortfolioImage{URL: url, Category: "work"})
		require.NoError(t, err)
		ids = append(ids, img.ID)
	}
	_, err := store.CreateImage(ctx, storage.PortfolioImage{URL: "https://img/me.png", Category: "about"})
	require.NoError(t, err)

	require.NoError(t, store.ReorderImages(ctx, []string{ids[2], ids[0], ids[1]}))

	work, err := store.ListImages(ctx, "work")
	require.NoError(t, err)
	require.Len(t, work, 3)
	assert.Equal(t, ids[2], work[0].ID)
	assert.Equal(t, ids[0], work[1].ID)
	assert.Equal(t, ids[1], work[2].ID)

	err = store.ReorderImages(ctx, []string{ids[1], "missing"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The failed reorder is rolled back.
	work, err = store.ListImages(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, ids[2], work[0].ID)
}

func TestSeoAndHeroVersioning(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	_, err := store.GetSeo(ctx, "home")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	seo, err := store.UpsertSeo(ctx, storage.SeoSettings{Page: "home", Title: "Home", Keywords: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, 1, seo.Version)

	seo, err = store.UpsertSeo(ctx, storage.SeoSettings{Page: "home", Title: "Home v2"})
	require.NoError(t, err)
	assert.Equal(t, 2, seo.Version)
	assert.Equal(t, "Home v2", seo.Title)
	assert.Empty(t, seo.Keywords)

	_, err = store.GetHero(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	hero, err := store.UpsertHero(ctx, storage.HeroContent{Headline: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, hero.Version)
	assert.Equal(t, storage.HeroID, hero.ID)

	hero, err = store.UpsertHero(ctx, storage.HeroContent{Headline: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, 2, hero.Version)
	assert.Equal(t, "Hello", hero.Headline)
}
