package funding

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// FlatRecord is one project-bearing funding relationship from the flat
// source, with its multi-valued fields still comma-separated. Field-name
// aliasing in the raw source is resolved before records reach this
// boundary; nothing past it does stringly-typed lookups.
type FlatRecord struct {
	ID string

	// OrgNames may name several co-funded organizations; the record fans
	// out to one project per named organization. OrgTypes is the parallel
	// comma-separated type list.
	OrgNames string
	OrgTypes string

	ProjectName string
	Description string
	Website     string

	InvestmentTypes  string
	InvestmentThemes string

	// Agencies are the project-level funders, already resolved against
	// the agency table.
	Agencies []Agency

	// Budget is free text in the source; unparseable values become zero.
	Budget string

	ProgramFunded bool
}

// OrgProfile carries organization-table data keyed by canonical org name:
// identity and org-level agency associations. Profiles supplement flat
// records; fan-out orgs without a profile get synthesized identity.
type OrgProfile struct {
	ID       string
	Key      string
	Type     string
	Agencies []Agency
}

// Normalize parses flat funding records into the nested entity graph.
// Organizations are deduplicated by exact name in first-seen order;
// repeated appearances append projects to the existing organization.
// Records missing an organization name are skipped, never fatal.
func Normalize(records []FlatRecord) []Organization {
	return NormalizeWithProfiles(records, nil, nil)
}

// NormalizeWithProfiles is Normalize with organization-table profiles
// merged in: a profile supplies the organization's id, slug, type label,
// and org-level agencies. An optional logger reports skipped records.
func NormalizeWithProfiles(records []FlatRecord, profiles map[string]OrgProfile, log *zap.SugaredLogger) []Organization {
	byName := make(map[string]*Organization)
	seenProjects := make(map[string]map[string]bool)
	var order []string
	skipped := 0

	for _, rec := range records {
		names := SplitList(rec.OrgNames)
		if len(names) == 0 {
			skipped++
			continue
		}
		types := SplitList(rec.OrgTypes)

		lastType := ""
		for i, name := range names {
			orgType := typeAt(types, i, &lastType)

			org, ok := byName[name]
			if !ok {
				org = newOrganization(name, orgType, profiles)
				byName[name] = org
				seenProjects[name] = make(map[string]bool)
				order = append(order, name)
			}

			// The same record can reach an organization twice (duplicate
			// rows in the source); keep the first appearance only.
			if rec.ID != "" && seenProjects[name][rec.ID] {
				continue
			}
			seenProjects[name][rec.ID] = true

			org.Projects = append(org.Projects, projectFromRecord(rec, org.ID, log))
		}
	}

	if skipped > 0 && log != nil {
		log.Infow("Skipped records without organization name",
			"skipped", skipped,
			"total", len(records),
		)
	}

	out := make([]Organization, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

// typeAt picks the organization type for the i-th fanned-out name:
// positional from the parallel type list, falling back to the last known
// type, then "Unknown".
func typeAt(types []string, i int, lastType *string) string {
	if i < len(types) && types[i] != "" {
		*lastType = types[i]
		return types[i]
	}
	if *lastType != "" {
		return *lastType
	}
	return "Unknown"
}

func newOrganization(name, orgType string, profiles map[string]OrgProfile) *Organization {
	if profile, ok := profiles[canonical(name)]; ok {
		id := profile.ID
		if id == "" {
			id = Slug(name)
		}
		key := profile.Key
		if key == "" {
			key = Slug(name)
		}
		t := profile.Type
		if t == "" {
			t = orgType
		}
		return &Organization{ID: id, Name: name, Key: key, Type: t, Agencies: profile.Agencies}
	}
	return &Organization{ID: Slug(name), Name: name, Key: Slug(name), Type: orgType}
}

func projectFromRecord(rec FlatRecord, parentOrgID string, log *zap.SugaredLogger) Project {
	budget, ok := parseBudget(rec.Budget)
	if !ok && log != nil {
		log.Debugw("Unparseable budget treated as zero",
			"record", rec.ID,
			"budget", rec.Budget,
		)
	}

	return Project{
		ID:               rec.ID,
		ParentOrgID:      parentOrgID,
		Name:             rec.ProjectName,
		Description:      rec.Description,
		Website:          rec.Website,
		InvestmentTypes:  SplitList(rec.InvestmentTypes),
		InvestmentThemes: SplitList(rec.InvestmentThemes),
		Agencies:         dedupAgencies(rec.Agencies),
		Budget:           budget,
		ProgramFunded:    rec.ProgramFunded,
	}
}

// parseBudget parses a free-text budget figure, tolerating currency
// symbols and thousands separators. Malformed values yield (0, false);
// empty values are (0, true) since absence is not malformation.
func parseBudget(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ':
			return -1
		}
		return r
	}, s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// dedupAgencies removes duplicate agency records by id, keeping
// first-seen order. Agencies without an id dedup on (name, donor).
func dedupAgencies(agencies []Agency) []Agency {
	if len(agencies) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(agencies))
	var out []Agency
	for _, a := range agencies {
		key := a.ID
		if key == "" {
			key = canonical(a.Name) + "|" + canonical(a.Donor)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// Slug derives a lookup key from a display name: lower-cased, with runs
// of non-alphanumerics collapsed to single hyphens.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
