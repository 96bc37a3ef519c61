package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/folio/internal/auth"
	"github.com/fyrsmithlabs/folio/internal/monitor"
)

var (
	dashboardInterval time.Duration
	dashboardToken    string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live terminal dashboard for a running foliod",
	Long: `Poll a running foliod and show its health, content counts, contact
inbox, knowledge base and conversation memory in the terminal.

The admin token comes from --token, then $FOLIO_TOKEN, and otherwise is
signed locally with auth.jwt_secret. Without any token only /health is
shown.

Examples:
  folioctl dashboard
  folioctl dashboard --interval 2s --server http://portfolio.internal:8420`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().DurationVar(&dashboardInterval, "interval", 5*time.Second, "refresh interval")
	dashboardCmd.Flags().StringVar(&dashboardToken, "token", "", "admin token (default $FOLIO_TOKEN)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if dashboardInterval < time.Second {
		return fmt.Errorf("--interval must be at least 1s, got %s", dashboardInterval)
	}
	client := monitor.NewClient(serverURL, resolveToken(cmd))
	p := tea.NewProgram(
		monitor.NewModel(client, dashboardInterval),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// resolveToken picks the admin token for the dashboard. An empty result
// means health-only mode.
func resolveToken(cmd *cobra.Command) string {
	if dashboardToken != "" {
		return dashboardToken
	}
	if tok := os.Getenv("FOLIO_TOKEN"); tok != "" {
		return tok
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "no admin token: %v\n", err)
		return ""
	}
	authn, err := auth.New(cfg.Auth)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "no admin token: %v\n", err)
		return ""
	}
	tok, err := authn.Issue()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "no admin token: %v\n", err)
		return ""
	}
	return tok.AccessToken
}
