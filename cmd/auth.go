package cmd

import (
	"github.com/spf13/cobra"
)

// authCmd groups the authentication subcommands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage APS authentication",
	Long: `Manage authentication to Autodesk Platform Services.

The login subcommand runs a browser-based OAuth flow: a local callback
listener is started, the system browser is opened at the authorization
URL, and the returned code is exchanged for a token that is cached on
disk for subsequent commands.`,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
