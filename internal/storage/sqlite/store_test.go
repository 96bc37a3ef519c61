package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Ping(context.Background()))
	require.NoError(t, second.Close())
}

func TestCanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListCaseStudies(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	_, err := store.CreateContact(ctx, storage.ContactSubmission{Name: "A", Email: "a@example.com", Message: "hi"})
	require.NoError(t, err)
	_, err = store.CreateCoreValue(ctx, storage.CoreValue{Title: "Craft"})
	require.NoError(t, err)
	_, err = store.CreateDocument(ctx, storage.KnowledgeDocument{Filename: "cv.txt", Checksum: "abc", Status: storage.DocumentFailed})
	require.NoError(t, err)

	c, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ContactsNew)
	assert.Equal(t, 1, c.ContactsTotal)
	assert.Equal(t, 1, c.CoreValues)
	assert.Equal(t, 1, c.Documents)
	assert.Equal(t, 1, c.DocumentFailed)
	assert.Zero(t, c.Sessions)
}

func TestStamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	c, u := stamp(time.Time{}, time.Time{}, now)
	assert.Equal(t, now, c)
	assert.Equal(t, now, u)

	c, u = stamp(earlier, time.Time{}, now)
	assert.Equal(t, earlier, c)
	assert.Equal(t, earlier, u)
}
