package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/mcp"
	"github.com/fyrsmithlabs/folio/internal/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the portfolio MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout backed by the local folio database.

Agents get read access to the knowledge base, published case studies, the
career timeline and visitor conversation memory. Logs go to stderr.

Example client configuration:
  {"mcpServers": {"folio": {"command": "folioctl", "args": ["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	reg, err := services.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer reg.Close()

	srv, err := mcp.NewServer(&mcp.Config{
		Name:    "folio",
		Version: version,
		Logger:  logger,
	}, reg.MCPServices())
	if err != nil {
		return fmt.Errorf("creating mcp server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "folio MCP server ready (%d tools)\n", srv.Registry().Count())
	if err := srv.Run(ctx); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		return err
	}
	return nil
}
