package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/funding"
)

// QueryCmd filters the funding graph from the command line
var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter organizations and projects",
	Long: `Apply a multi-dimensional filter to the funding graph and print the
surviving organizations and projects.

Donor selections are conjunctive at organization scope, investment types
are disjunctive, and investment themes are conjunctive per project.

Examples:
  fundgraph query --donors Germany
  fundgraph query --donors Germany --donors France
  fundgraph query --types "Data Sets & Commons" --themes Health
  fundgraph query -q atlas --json`,
	RunE: runQuery,
}

var (
	queryFilter      filterFlags
	queryDataDirFlag string
	queryJSONFlag    bool
)

func init() {
	QueryCmd.Flags().StringVarP(&queryFilter.search, "search", "q", "", "Substring search over org and project names")
	QueryCmd.Flags().StringArrayVar(&queryFilter.donors, "donors", nil, "Required donor countries (repeatable, all must fund)")
	QueryCmd.Flags().StringArrayVar(&queryFilter.types, "types", nil, "Investment types (repeatable, any may match)")
	QueryCmd.Flags().StringArrayVar(&queryFilter.themes, "themes", nil, "Investment themes (repeatable, all must match)")
	QueryCmd.Flags().StringVar(&queryDataDirFlag, "data-dir", "", "Data directory (overrides config)")
	QueryCmd.Flags().BoolVar(&queryJSONFlag, "json", false, "Output as JSON")
}

func runQuery(cmd *cobra.Command, args []string) error {
	orgs, err := loadGraph(queryDataDirFlag)
	if err != nil {
		return err
	}

	filtered := funding.Apply(orgs, queryFilter.spec())

	if queryJSONFlag {
		data, err := json.MarshalIndent(filtered, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal results")
		}
		fmt.Println(string(data))
		return nil
	}

	if len(filtered) == 0 {
		pterm.Info.Println("No organizations match the filter")
		return nil
	}

	table := pterm.TableData{{"Organization", "Project", "Types", "Themes", "Donors"}}
	projects := 0
	for _, org := range filtered {
		donors := strings.Join(org.CombinedDonors(), ", ")
		for _, p := range org.Projects {
			projects++
			table = append(table, []string{
				org.Name,
				p.Name,
				strings.Join(p.InvestmentTypes, ", "),
				strings.Join(p.InvestmentThemes, ", "),
				donors,
			})
		}
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	pterm.Info.Printf("%d organizations, %d projects\n", len(filtered), projects)
	return nil
}
