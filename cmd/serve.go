package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"apsconnect/internal/tools"
)

// serveCmd starts the MCP stdio server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve apsconnect functionality as MCP tools over stdio",
	Long: `Start an MCP server on stdin/stdout exposing apsconnect's tools:
APS token lifecycle (aps_get_token, aps_check_token, aps_clear_token),
the origin/target mapping store (mapping_*), and the local modeling
application's Routes API (revit_*).

This command is meant to be launched by an MCP client (e.g. an AI
assistant's configuration), not interactively. All logging goes to
stderr; stdout carries only the MCP protocol.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flow, err := buildOrchestrator(cfg, 0)
	if err != nil {
		return err
	}

	mappings, err := openMappingStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open mapping store: %w", err)
	}

	server := tools.NewMCPServer(GetVersion(), flow, mappings, newRevitClient(cfg))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return server.Start(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
