package funding

import (
	"sort"

	"github.com/crisisatlas/fundgraph/errors"
)

// Facet names a countable filter dimension.
type Facet string

const (
	// FacetType counts projects per investment-type tag.
	FacetType Facet = "type"
	// FacetTheme counts projects per investment-theme tag.
	FacetTheme Facet = "theme"
)

// CountByFacet computes, for every candidate value of one facet, how many
// distinct projects would match if that facet's constraint were lifted
// while every other active filter stays enforced. This keeps displayed
// facet counts mutually consistent with the rest of the filter.
//
// Keys are trimmed and lower-cased. Every value present anywhere in the
// unfiltered graph is enumerated, so counts of zero still appear and the
// facet list never shrinks under a narrow filter.
//
// Counts are recomputed from a fresh filter pass on every call; nothing
// is cached, which is what guarantees consistency across facets.
func CountByFacet(orgs []Organization, spec FilterSpec, facet Facet) (map[string]int, error) {
	var tags func(Project) []string
	switch facet {
	case FacetType:
		spec.InvestmentTypes = nil
		tags = func(p Project) []string { return p.InvestmentTypes }
	case FacetTheme:
		spec.InvestmentThemes = nil
		tags = func(p Project) []string { return p.InvestmentThemes }
	default:
		return nil, errors.NewInvalidRequestError("unknown facet %q", facet)
	}

	// Full vocabulary first, so values the current filter excludes
	// entirely still show up with zero.
	counts := make(map[string]int)
	for _, org := range orgs {
		for _, p := range org.Projects {
			for _, tag := range tags(p) {
				if key := canonical(tag); key != "" {
					if _, ok := counts[key]; !ok {
						counts[key] = 0
					}
				}
			}
		}
	}

	for _, org := range Apply(orgs, spec) {
		for _, p := range org.Projects {
			seen := make(map[string]bool, len(tags(p)))
			for _, tag := range tags(p) {
				key := canonical(tag)
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				counts[key]++
			}
		}
	}

	return counts, nil
}

// Vocabulary returns the distinct canonical values of one facet across
// the full graph, unfiltered.
func Vocabulary(orgs []Organization, facet Facet) ([]string, error) {
	counts, err := CountByFacet(orgs, FilterSpec{}, facet)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}
