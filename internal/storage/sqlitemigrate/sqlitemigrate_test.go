package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApply_RunsEachFileOnce(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	migrations := fstest.MapFS{
		"002_more.sql":  {Data: []byte("-- +migrate Up\nALTER TABLE things ADD COLUMN size INTEGER;\n-- +migrate Down\nSELECT 1;\n")},
		"001_init.sql":  {Data: []byte("-- +migrate Up\nCREATE TABLE things (id TEXT PRIMARY KEY);\n")},
		"notes.txt":     {Data: []byte("ignored")},
		"003_empty.sql": {Data: []byte("-- +migrate Up\n\n-- +migrate Down\nDROP TABLE things;\n")},
	}

	pending, err := Pending(ctx, db, migrations, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql", "003_empty.sql"}, pending)

	applied, err := Apply(ctx, db, migrations, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql"}, applied)

	_, err = db.Exec("INSERT INTO things (id, size) VALUES ('a', 1)")
	require.NoError(t, err)

	// Second run is a no-op, so the ALTER TABLE is not repeated.
	applied, err = Apply(ctx, db, migrations, ".")
	require.NoError(t, err)
	assert.Empty(t, applied)

	pending, err = Pending(ctx, db, migrations, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"003_empty.sql"}, pending)
}

func TestApply_FailingMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	migrations := fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nTHIS IS NOT SQL;\n")},
	}

	_, err := Apply(ctx, db, migrations, ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec migration 001_bad.sql")

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Zero(t, n)
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no markers", "CREATE TABLE a (id TEXT);", "CREATE TABLE a (id TEXT);"},
		{"up only", "-- +migrate Up\nCREATE TABLE a (id TEXT);", "\nCREATE TABLE a (id TEXT);"},
		{"up and down", "-- +migrate Up\nUP;\n-- +migrate Down\nDOWN;", "\nUP;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUpMigration(tt.content))
		})
	}
}
