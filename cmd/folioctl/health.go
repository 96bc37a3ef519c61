package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpserver "github.com/fyrsmithlabs/folio/internal/http"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check foliod health",
	Long: `Check the health status of a running foliod.

Examples:
  # Check health
  folioctl health

  # Check health on a different server
  folioctl health --server http://portfolio.internal:8420`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	url := strings.TrimRight(serverURL, "/") + "/health"

	client := &http.Client{
		Timeout: 5 * time.Second,
	}
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var health httpserver.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server Status: %s\n", health.Status)
	fmt.Fprintf(out, "Database:      %s\n", health.Database)
	if health.Version != "" {
		fmt.Fprintf(out, "Version:       %s\n", health.Version)
	}
	fmt.Fprintf(out, "Server URL:    %s\n", serverURL)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server is %s", health.Status)
	}
	return nil
}
