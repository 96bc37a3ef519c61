package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/services"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Add documents to the knowledge base",
	Long: `Extract, analyse and index documents into the knowledge base.

Supported formats are PDF, DOCX, Markdown and plain text. A file whose
content was ingested before is reported with its existing ID.

Examples:
  folioctl ingest resume.pdf
  folioctl ingest notes/*.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg, err := services.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer reg.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		doc, err := reg.Knowledge().IngestFile(cmd.Context(), path)
		if err != nil {
			failed++
			logger.Error("ingest failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(out, "FAIL  %s: %v\n", path, err)
			continue
		}
		if doc.Status != storage.DocumentCompleted {
			failed++
		}
		fmt.Fprintf(out, "%-9s %s  %s\n", doc.Status, doc.ID, path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(args))
	}
	return nil
}
