package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/fyrsmithlabs/folio/internal/storage/sqlite/migrations"
	"github.com/fyrsmithlabs/folio/internal/storage/sqlitemigrate"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply pending schema migrations to the folio database.

foliod applies migrations on startup; this command is for upgrading a
database ahead of a deploy or checking what an upgrade would change.

Examples:
  # Show pending migrations
  folioctl migrate --dry-run

  # Apply them
  folioctl migrate`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list pending migrations without applying them")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return migrate(cmd, cfg.Storage.Path, migrateDryRun)
}

func migrate(cmd *cobra.Command, path string, dryRun bool) error {
	if path == "" {
		return fmt.Errorf("storage.path is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating storage dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if dryRun {
		pending, err := sqlitemigrate.Pending(ctx, db, migrations.FS, ".")
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "Database is up to date")
			return nil
		}
		for _, name := range pending {
			fmt.Fprintf(out, "pending  %s\n", name)
		}
		return nil
	}

	applied, err := sqlitemigrate.Apply(ctx, db, migrations.FS, ".")
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "Database is up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintf(out, "applied  %s\n", name)
	}
	return nil
}
