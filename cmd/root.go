package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"apsconnect/internal/cli"
	"apsconnect/pkg/logging"
)

// Exit codes for CLI commands. These follow common conventions so scripts
// can distinguish configuration problems from flow failures.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// Persistent flags shared by all commands.
var (
	rootConfigPath string
	rootDebug      bool
)

// rootCmd is the base command for the apsconnect application.
var rootCmd = &cobra.Command{
	Use:   "apsconnect",
	Short: "Connect local modeling workflows to Autodesk Platform Services",
	Long: `apsconnect manages the OAuth credentials and local bridges needed to
connect modeling workflows to Autodesk Platform Services (APS).

It runs the browser-based authorization flow with a loopback callback
listener, caches the resulting token, maintains the origin/target
element-ID mapping store, and exposes everything as MCP tools for AI
assistants via 'apsconnect serve'.`,
	// SilenceUsage prevents Cobra from printing usage on errors the
	// application already explains.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		// stderr, so 'serve' can own stdout for the MCP protocol.
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command. Called from main to
// inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It is called
// by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apsconnect version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code based on the error type, providing
// semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authExpired *cli.AuthExpiredError
	if errors.As(err, &authExpired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "",
		"Configuration directory (default is $HOME/.config/apsconnect)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false,
		"Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
