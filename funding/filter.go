package funding

import "strings"

// Apply evaluates a filter spec against the graph and returns the visible
// subset: each surviving organization carries only its visible projects.
// The input graph is never mutated; returned organizations are pruned
// copies sharing the underlying project values.
//
// Evaluation order per organization:
//
//  1. Donor gatekeeper (conjunctive, organization scope) with a
//     project-level override and an org-wide union fallback.
//  2. Org-name search bypass: a query matching the organization name
//     keeps all donor-surviving projects without project-level search.
//  3. Project-level search over name, description, and parent org name.
//  4. Investment type filter (disjunctive).
//  5. Investment theme filter (conjunctive).
//  6. An organization survives only with at least one visible project.
//
// Unknown facet values degrade to "no matches for that value"; they are
// never an error.
func Apply(orgs []Organization, spec FilterSpec) []Organization {
	query := canonical(spec.SearchQuery)

	var out []Organization
	for _, org := range orgs {
		candidates, ok := donorGatekeeper(org, spec.Donors)
		if !ok {
			continue
		}

		bypass := query != "" && strings.Contains(canonical(org.Name), query)

		var visible []Project
		for _, p := range candidates {
			if query != "" && !bypass && !matchesSearch(p, org.Name, query) {
				continue
			}
			if len(spec.InvestmentTypes) > 0 && !anyTagSelected(p.InvestmentTypes, spec.InvestmentTypes) {
				continue
			}
			if len(spec.InvestmentThemes) > 0 && !allTagsSelected(p.InvestmentThemes, spec.InvestmentThemes) {
				continue
			}
			visible = append(visible, p)
		}

		if len(visible) == 0 {
			continue
		}

		pruned := org
		pruned.Projects = visible
		out = append(out, pruned)
	}
	return out
}

// donorGatekeeper decides which of the organization's projects continue
// past the donor filter. Donor selection is conjunctive: every selected
// donor must be covered.
//
// Resolution order, pinned by observed dataset behavior:
//
//  1. Org-level donors (the organization's own agencies) cover the whole
//     selection: every project continues.
//  2. Project override: projects whose own donors cover the whole
//     selection continue; the rest are dropped immediately.
//  3. Union fallback: when no single entity covers the selection but the
//     org-wide donor union (org-level plus every project) does, the
//     selection is satisfied collectively and every project continues.
//  4. Otherwise the organization is hidden outright.
func donorGatekeeper(org Organization, donors []string) ([]Project, bool) {
	if len(donors) == 0 {
		return org.Projects, true
	}

	if containsAll(donorSet(org.Donors()), donors) {
		return org.Projects, true
	}

	var passing []Project
	for _, p := range org.Projects {
		if containsAll(donorSet(p.Donors()), donors) {
			passing = append(passing, p)
		}
	}
	if len(passing) > 0 {
		return passing, true
	}

	if containsAll(donorSet(org.CombinedDonors()), donors) {
		return org.Projects, true
	}

	return nil, false
}

// matchesSearch reports whether the project matches the canonicalized
// query by substring on its name, description, or parent org name.
func matchesSearch(p Project, orgName, query string) bool {
	return strings.Contains(canonical(p.Name), query) ||
		strings.Contains(canonical(p.Description), query) ||
		strings.Contains(canonical(orgName), query)
}

// anyTagSelected reports whether at least one tag intersects the
// selection (disjunction, case-insensitive and trimmed).
func anyTagSelected(tags, selected []string) bool {
	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[canonical(t)] = true
	}
	for _, s := range selected {
		if tagSet[canonical(s)] {
			return true
		}
	}
	return false
}

// allTagsSelected reports whether the selection is a subset of the tags
// (conjunction, case-insensitive and trimmed).
func allTagsSelected(tags, selected []string) bool {
	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[canonical(t)] = true
	}
	for _, s := range selected {
		if !tagSet[canonical(s)] {
			return false
		}
	}
	return true
}
