package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/errors"
)

// NestCmd builds the nested graph and writes it as JSON
var NestCmd = &cobra.Command{
	Use:   "nest",
	Short: "Build the nested funding graph and write it as JSON",
	Long: `Read the flat source tables from the data directory, nest them into
the organization -> project graph, and write the result as JSON.

Examples:
  fundgraph nest                       # Write the graph to stdout
  fundgraph nest --out nested.json     # Write the graph to a file`,
	RunE: runNest,
}

var (
	nestDataDirFlag string
	nestOutFlag     string
)

func init() {
	NestCmd.Flags().StringVar(&nestDataDirFlag, "data-dir", "", "Data directory (overrides config)")
	NestCmd.Flags().StringVar(&nestOutFlag, "out", "", "Output file (default: stdout)")
}

func runNest(cmd *cobra.Command, args []string) error {
	orgs, err := loadGraph(nestDataDirFlag)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(orgs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal graph")
	}

	if nestOutFlag == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(nestOutFlag, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", nestOutFlag)
	}

	projects := 0
	for _, org := range orgs {
		projects += len(org.Projects)
	}
	fmt.Printf("Wrote %d organizations (%d projects) to %s\n", len(orgs), projects, nestOutFlag)
	return nil
}
