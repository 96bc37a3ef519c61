package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/folio/internal/auth"
)

var tokenJSON bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API token",
	Long: `Sign an admin token with auth.jwt_secret without going through the
login endpoint. Useful for scripts and for installations that leave
auth.admin_password unset.

Examples:
  export FOLIO_TOKEN=$(folioctl token)
  curl -H "Authorization: Bearer $FOLIO_TOKEN" http://127.0.0.1:8420/api/v1/admin/status`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenJSON, "json", false, "print the token with its expiry as JSON")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	authn, err := auth.New(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := authn.Issue()
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	out := cmd.OutOrStdout()
	if tokenJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(token)
	}
	fmt.Fprintln(out, token.AccessToken)
	return nil
}
