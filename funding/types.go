// Package funding implements the crisis-funding entity graph and its
// faceted filtering engine: normalization of flat funding records into
// organizations and projects, donor/agency resolution, multi-dimensional
// filter evaluation, and facet counting.
//
// The graph is immutable after normalization. Every operation in this
// package is a pure function over the graph and a filter spec; callers may
// invoke them concurrently without locks.
package funding

import "strings"

// UnspecifiedAgency is the sentinel agency name used by the source data
// when a donor country funds an entity without a named department. It is
// excluded from display lists but still participates in filter matching.
const UnspecifiedAgency = "Unspecified Agency"

// Agency is a financing body belonging to exactly one donor country.
type Agency struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Donor   string `json:"donor"`
	Website string `json:"website,omitempty"`
}

// Project is a funded project owned by exactly one organization.
// Projects reference their parent by id, never by pointer, so the graph
// stays a JSON-serializable tree.
type Project struct {
	ID          string `json:"id"`
	ParentOrgID string `json:"parent_org_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`

	// InvestmentTypes is a disjunctive classification domain: a type
	// filter matches when any selected type intersects these tags.
	InvestmentTypes []string `json:"investment_types,omitempty"`

	// InvestmentThemes is a conjunctive domain: a theme filter matches
	// only when the project carries every selected theme.
	InvestmentThemes []string `json:"investment_themes,omitempty"`

	// Agencies are the project-level funders, distinct from and additive
	// to the parent organization's funders.
	Agencies []Agency `json:"agencies,omitempty"`

	Budget        float64 `json:"budget,omitempty"`
	ProgramFunded bool    `json:"program_funded,omitempty"`
}

// Organization is a funded organization owning zero or more projects.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
	Type string `json:"type"`

	// Agencies are the organization's direct institutional funders
	// (org-level associations).
	Agencies []Agency `json:"agencies,omitempty"`

	Projects []Project `json:"projects"`
}

// DonorInfo pairs a donor country with its funding level for one
// organization: org-level (solid) or only through at least one project
// (attenuated). Derived for display weighting, never stored.
type DonorInfo struct {
	Donor      string `json:"donor"`
	IsOrgLevel bool   `json:"is_org_level"`
}

// FilterSpec is the multi-dimensional filter evaluated against the graph.
// Every field defaults to "no constraint" when empty.
//
// Semantics differ per dimension: Donors is a conjunctive gatekeeper at
// organization scope, SearchQuery is a substring match with an org-name
// bypass, InvestmentTypes is disjunctive, InvestmentThemes is conjunctive.
type FilterSpec struct {
	SearchQuery      string   `json:"search_query,omitempty"`
	Donors           []string `json:"donors,omitempty"`
	InvestmentTypes  []string `json:"investment_types,omitempty"`
	InvestmentThemes []string `json:"investment_themes,omitempty"`
}

// IsZero reports whether the spec carries no constraints at all.
func (s FilterSpec) IsZero() bool {
	return s.SearchQuery == "" &&
		len(s.Donors) == 0 &&
		len(s.InvestmentTypes) == 0 &&
		len(s.InvestmentThemes) == 0
}

// canonical normalizes a tag or donor value for matching: trimmed and
// lower-cased. Identity of stored values stays the source's exact string;
// only matching goes through this.
func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Donors returns the project's own donor-country set: the union of donor
// countries across its project-level agencies. Parent organization donors
// are deliberately not inherited here; filtering treats project donors as
// independent (display inheritance is handled by ResolveDonorInfo).
func (p Project) Donors() []string {
	return donorUnion(p.Agencies)
}

// Donors returns the organization-level donor-country set: the union of
// donor countries of the organization's own agencies.
func (o Organization) Donors() []string {
	return donorUnion(o.Agencies)
}

// CombinedDonors returns the organization-wide donor union: org-level
// donors plus every project's donors. This is the set the donor
// gatekeeper checks at organization scope.
func (o Organization) CombinedDonors() []string {
	agencies := make([]Agency, 0, len(o.Agencies))
	agencies = append(agencies, o.Agencies...)
	for _, p := range o.Projects {
		agencies = append(agencies, p.Agencies...)
	}
	return donorUnion(agencies)
}

// donorUnion folds agencies into a deduplicated donor list, preserving
// first-seen order. Dedup is case-insensitive on the trimmed name; the
// first-seen original casing wins.
func donorUnion(agencies []Agency) []string {
	seen := make(map[string]bool, len(agencies))
	var donors []string
	for _, a := range agencies {
		donor := strings.TrimSpace(a.Donor)
		if donor == "" {
			continue
		}
		key := canonical(donor)
		if seen[key] {
			continue
		}
		seen[key] = true
		donors = append(donors, donor)
	}
	return donors
}

// donorSet builds a canonical-key lookup set from a donor list.
func donorSet(donors []string) map[string]bool {
	set := make(map[string]bool, len(donors))
	for _, d := range donors {
		if key := canonical(d); key != "" {
			set[key] = true
		}
	}
	return set
}

// containsAll reports whether every wanted key is present in the set.
func containsAll(set map[string]bool, wanted []string) bool {
	for _, w := range wanted {
		if !set[canonical(w)] {
			return false
		}
	}
	return true
}
