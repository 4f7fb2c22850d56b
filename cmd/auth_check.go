package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"apsconnect/internal/cli"
	"apsconnect/internal/oauth"
)

// authCheckCmd validates the OAuth configuration without starting a flow.
var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the OAuth configuration",
	Long: `Validate the OAuth configuration for the active environment and probe
whether the local callback port is free. No browser is opened and no
network request leaves the machine.`,
	Args: cobra.NoArgs,
	RunE: runAuthCheck,
}

func runAuthCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		fmt.Fprintf(out, "%s configuration for environment %q\n",
			text.FgRed.Sprint("Invalid"), cfg.Environment)
		return &cli.AuthRequiredError{MissingKeys: missing}
	}

	active := cfg.Active()
	flowCfg := cfg.OAuthFlowConfig()
	if ferr := flowCfg.Validate(); ferr != nil {
		return ferr
	}

	fmt.Fprintf(out, "%s configuration (%s)\n", text.FgGreen.Sprint("Valid"), cfg.Environment)
	if len(active.ClientID) >= 8 {
		fmt.Fprintf(out, "Client ID:    %s...\n", active.ClientID[:8])
	}
	fmt.Fprintf(out, "Scopes:       %s\n", active.Scopes)
	fmt.Fprintf(out, "Callback URL: %s\n", active.CallbackURL)

	port := oauth.ExtractPort(active.CallbackURL)
	if oauth.IsPortAvailable(port) {
		fmt.Fprintf(out, "Port %d:    %s\n", port, text.FgGreen.Sprint("available"))
	} else {
		fmt.Fprintf(out, "Port %d:    %s (login will fail to bind)\n",
			port, text.FgYellow.Sprint("in use"))
	}

	return nil
}

func init() {
	authCmd.AddCommand(authCheckCmd)
}
