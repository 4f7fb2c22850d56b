package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"apsconnect/internal/cli"
)

var mappingExportOut string

// mappingCmd groups the origin/target mapping subcommands.
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect the origin/target element-ID mapping store",
}

var mappingStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mapping store statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openMappingStore(cfg)
		if err != nil {
			return err
		}

		cli.PrintMappingStats(cmd.OutOrStdout(), store.Stats())
		return nil
	},
}

var mappingExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all mappings to a CSV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openMappingStore(cfg)
		if err != nil {
			return err
		}

		path, err := store.ExportCSV(mappingExportOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported mappings to %s\n", path)
		return nil
	},
}

func init() {
	mappingExportCmd.Flags().StringVarP(&mappingExportOut, "output", "o", "",
		"CSV output path (default is the mapping file with a .csv extension)")

	mappingCmd.AddCommand(mappingStatsCmd)
	mappingCmd.AddCommand(mappingExportCmd)
	rootCmd.AddCommand(mappingCmd)
}
