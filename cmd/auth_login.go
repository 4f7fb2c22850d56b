package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"apsconnect/internal/cli"
	"apsconnect/internal/oauth"
)

var loginTimeout time.Duration

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate to Autodesk Platform Services",
	Long: `Authenticate to APS using the browser-based OAuth flow.

A callback listener is bound on the loopback interface before the browser
opens, so the authorization redirect always has somewhere to land. The
command waits (bounded) for the callback, exchanges the authorization
code for a token, and caches it for later commands.

Examples:
  apsconnect auth login                  # Login with the configured environment
  apsconnect auth login --timeout 2m     # Give up if no callback within 2 minutes`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().DurationVar(&loginTimeout, "timeout", oauth.DefaultCallbackTimeout,
		"How long to wait for the browser callback")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	flow, err := buildOrchestrator(cfg, loginTimeout,
		oauth.WithAuthURLNotifier(func(url string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Opening browser for authorization.\nIf it does not open, visit:\n  %s\n\n", url)
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = " Waiting for authorization callback..."
			s.Start()
		}),
	)
	if err != nil {
		return err
	}

	rec, err := flow.Authenticate(cmd.Context())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	remaining := oauth.RemainingValidity(rec, time.Now())
	fmt.Fprintf(cmd.OutOrStdout(), "Authenticated to %s. Token valid for %s.\n",
		cfg.Environment, remaining.Round(time.Second))
	return nil
}
