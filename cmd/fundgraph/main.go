package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/cmd/fundgraph/commands"
	"github.com/crisisatlas/fundgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fundgraph",
	Short: "fundgraph - Crisis-funding graph and faceted filtering engine",
	Long: `fundgraph - Faceted exploration of crisis-funding data.

fundgraph nests flat funding tables (organizations, agencies, projects)
into a donor -> agency -> organization -> project graph and answers
multi-dimensional filter and facet queries over it.

Available commands:
  serve   - Start the HTTP API server
  ingest  - Fetch source tables from the upstream base
  nest    - Build the nested graph and write it as JSON
  query   - Filter organizations and projects from the command line
  facets  - Show facet counts under a filter selection
  donors  - List the donor vocabulary
  db      - Manage the snapshot database

Examples:
  fundgraph serve                          # Start the API server
  fundgraph query --donors Germany         # Organizations funded by Germany
  fundgraph facets themes --donors France  # Theme counts for France
  fundgraph db stats                       # Show stored snapshots`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.NestCmd)
	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.FacetsCmd)
	rootCmd.AddCommand(commands.DonorsCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
