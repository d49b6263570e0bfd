package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/funding"
)

// DonorsCmd lists the donor vocabulary of the graph
var DonorsCmd = &cobra.Command{
	Use:   "donors",
	Short: "List donor countries present in the graph",
	Long: `List every donor country appearing anywhere in the graph, at the
organization or project level, sorted alphabetically.

Examples:
  fundgraph donors
  fundgraph donors --json`,
	RunE: runDonors,
}

var (
	donorsDataDirFlag string
	donorsJSONFlag    bool
)

func init() {
	DonorsCmd.Flags().StringVar(&donorsDataDirFlag, "data-dir", "", "Data directory (overrides config)")
	DonorsCmd.Flags().BoolVar(&donorsJSONFlag, "json", false, "Output as JSON")
}

func runDonors(cmd *cobra.Command, args []string) error {
	orgs, err := loadGraph(donorsDataDirFlag)
	if err != nil {
		return err
	}

	donors := funding.DonorVocabulary(orgs)

	if donorsJSONFlag {
		data, err := json.MarshalIndent(donors, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal donors")
		}
		fmt.Println(string(data))
		return nil
	}

	for _, donor := range donors {
		fmt.Println(donor)
	}
	return nil
}
