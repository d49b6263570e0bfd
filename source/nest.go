package source

import (
	"strings"

	"go.uber.org/zap"

	"github.com/crisisatlas/fundgraph/funding"
)

// BuildGraphInputs turns the raw tables into the normalizer's inputs: one
// flat record per project row with its agencies resolved, plus
// organization profiles keyed by canonical org name carrying org-level
// agencies and identity.
//
// The matching rules follow the upstream pipeline: agencies are indexed
// by id and by normalized name, organization donor-agency tokens are
// matched against the name index, and project donor agencies resolve by
// record id first, then by name.
func BuildGraphInputs(tables *Tables, log *zap.SugaredLogger) ([]funding.FlatRecord, map[string]funding.OrgProfile) {
	agenciesByID, agenciesByName := buildAgencyIndices(tables.Agencies)

	profiles := make(map[string]funding.OrgProfile, len(tables.Organizations))
	for _, raw := range tables.Organizations {
		org := ResolveOrg(raw)
		key := org.ShortName
		if key == "" {
			key = funding.Slug(org.Name)
		} else {
			key = funding.Slug(key)
		}
		profiles[normalizeName(org.Name)] = funding.OrgProfile{
			ID:       org.ID,
			Key:      key,
			Type:     org.Type,
			Agencies: matchAgencies(org.DonorAgencies, agenciesByName),
		}
	}

	records := make([]funding.FlatRecord, 0, len(tables.Projects))
	for _, raw := range tables.Projects {
		project := ResolveProject(raw)
		records = append(records, funding.FlatRecord{
			ID:               project.ID,
			OrgNames:         project.Providers,
			OrgTypes:         firstString(raw.Fields, projectTypeFields),
			ProjectName:      project.Name,
			Description:      project.Description,
			Website:          project.Website,
			InvestmentTypes:  project.InvestmentTypes,
			InvestmentThemes: project.InvestmentThemes,
			Agencies:         resolveProjectAgencies(project.DonorAgencyIDs, agenciesByID, agenciesByName),
			Budget:           project.Budget,
			ProgramFunded:    project.ProgramFunded,
		})
	}

	if log != nil {
		log.Infow("Built graph inputs",
			"flat_records", len(records),
			"org_profiles", len(profiles),
		)
	}

	return records, profiles
}

// BuildGraph loads a data directory and normalizes it into the entity
// graph in one step.
func BuildGraph(dir string, log *zap.SugaredLogger) ([]funding.Organization, error) {
	tables, err := LoadDir(dir, log)
	if err != nil {
		return nil, err
	}
	records, profiles := BuildGraphInputs(tables, log)
	return funding.NormalizeWithProfiles(records, profiles, log), nil
}

// buildAgencyIndices indexes agency rows by record id and by normalized
// name. Name collisions keep every matching agency, as distinct donors
// can reuse a department name.
func buildAgencyIndices(raw []RawRecord) (map[string]funding.Agency, map[string][]funding.Agency) {
	byID := make(map[string]funding.Agency, len(raw))
	byName := make(map[string][]funding.Agency)

	for _, r := range raw {
		rec := ResolveAgency(r)
		if rec.Name == "" {
			continue
		}
		agency := funding.Agency{
			ID:      rec.ID,
			Name:    rec.Name,
			Donor:   rec.Country,
			Website: rec.Website,
		}
		if rec.ID != "" {
			byID[rec.ID] = agency
		}
		key := normalizeName(rec.Name)
		byName[key] = append(byName[key], agency)
	}

	return byID, byName
}

// matchAgencies resolves donor-agency tokens against the name index.
// Unmatched tokens are dropped; the upstream base routinely carries
// stale tokens for renamed agencies.
func matchAgencies(tokens []string, byName map[string][]funding.Agency) []funding.Agency {
	var matched []funding.Agency
	for _, token := range tokens {
		matched = append(matched, byName[normalizeName(token)]...)
	}
	return matched
}

// resolveProjectAgencies resolves project donor-agency references, which
// appear as record ids in linked exports and as names in flattened ones.
func resolveProjectAgencies(refs []string, byID map[string]funding.Agency, byName map[string][]funding.Agency) []funding.Agency {
	var agencies []funding.Agency
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if agency, ok := byID[ref]; ok {
			agencies = append(agencies, agency)
			continue
		}
		agencies = append(agencies, byName[normalizeName(ref)]...)
	}
	return agencies
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
