package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"apsconnect/internal/cli"
)

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show the cached APS token's status: whether one exists, when it
expires, and whether a refresh token is available. The token value itself
is never printed.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openTokenStore(cfg)
	if err != nil {
		return err
	}

	rec, err := store.Current()
	if err != nil {
		return err
	}

	now := time.Now()
	cli.PrintTokenStatus(cmd.OutOrStdout(), cfg.Environment, rec, now)

	// An expired token with no refresh token needs a fresh login; report
	// that through the exit code so scripts can react.
	if rec != nil && !rec.Valid(now) && rec.RefreshToken == "" {
		return &cli.AuthExpiredError{}
	}
	return nil
}
