package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/funding"
)

// FacetsCmd shows facet counts under a filter selection
var FacetsCmd = &cobra.Command{
	Use:   "facets {types|themes}",
	Short: "Show per-value project counts for a facet",
	Long: `Count distinct matching projects per facet value under the current
filter selection. The counted facet's own selection is ignored, so the
counts answer "what would I get if I picked this value instead".

Examples:
  fundgraph facets types
  fundgraph facets themes --donors Germany
  fundgraph facets themes --types "Infrastructure & Platforms" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFacets,
}

var (
	facetsFilter      filterFlags
	facetsDataDirFlag string
	facetsJSONFlag    bool
)

func init() {
	FacetsCmd.Flags().StringVarP(&facetsFilter.search, "search", "q", "", "Substring search over org and project names")
	FacetsCmd.Flags().StringArrayVar(&facetsFilter.donors, "donors", nil, "Required donor countries (repeatable)")
	FacetsCmd.Flags().StringArrayVar(&facetsFilter.types, "types", nil, "Investment types (repeatable)")
	FacetsCmd.Flags().StringArrayVar(&facetsFilter.themes, "themes", nil, "Investment themes (repeatable)")
	FacetsCmd.Flags().StringVar(&facetsDataDirFlag, "data-dir", "", "Data directory (overrides config)")
	FacetsCmd.Flags().BoolVar(&facetsJSONFlag, "json", false, "Output as JSON")
}

func runFacets(cmd *cobra.Command, args []string) error {
	var facet funding.Facet
	switch args[0] {
	case "types":
		facet = funding.FacetType
	case "themes":
		facet = funding.FacetTheme
	default:
		return errors.Newf("unknown facet %q (want types or themes)", args[0])
	}

	orgs, err := loadGraph(facetsDataDirFlag)
	if err != nil {
		return err
	}

	counts, err := funding.CountByFacet(orgs, facetsFilter.spec(), facet)
	if err != nil {
		return err
	}

	if facetsJSONFlag {
		data, err := json.MarshalIndent(counts, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal counts")
		}
		fmt.Println(string(data))
		return nil
	}

	values := make([]string, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Strings(values)

	table := pterm.TableData{{"Value", "Projects"}}
	for _, value := range values {
		table = append(table, []string{value, fmt.Sprintf("%d", counts[value])})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	return nil
}
