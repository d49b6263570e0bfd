// Package source loads the flat funding tables (organizations, agencies,
// projects) from their external JSON form and resolves them into the
// typed records the funding graph is normalized from.
//
// The raw tables are Airtable-shaped: a list of {id, fields} objects
// whose field names drifted across exports. All field-name aliasing and
// dynamic typing is absorbed here; nothing past this package does
// stringly-typed lookups.
package source

import (
	"strings"

	"github.com/crisisatlas/fundgraph/funding"
)

// RawRecord is one row of a raw table: an opaque id plus loosely typed
// fields.
type RawRecord struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// AgencyRecord is a resolved agency-table row.
type AgencyRecord struct {
	ID      string
	Name    string
	Country string
	Website string
}

// OrgRecord is a resolved organization-table row. DonorAgencies holds the
// raw multi-valued donor-agency tokens, still unmatched.
type OrgRecord struct {
	ID            string
	Name          string
	ShortName     string
	Type          string
	DonorAgencies []string
	Website       string
}

// ProjectRecord is a resolved project-table (ecosystem) row. Providers is
// the raw comma-separated organization list; fan-out happens during
// normalization.
type ProjectRecord struct {
	ID               string
	Providers        string
	Name             string
	Description      string
	Website          string
	InvestmentTypes  string
	InvestmentThemes string
	DonorAgencyIDs   []string
	Budget           string
	ProgramFunded    bool
}

// Field alias lists, in preference order. The upstream base renamed
// columns more than once; every historical name is accepted.
var (
	agencyNameFields = []string{
		"Name", "Agency Name", "Agency/Department Name",
		"Org Full Name", "Org Short Name", "Title",
	}
	agencyCountryFields = []string{"Country Name", "Country"}
	agencyWebsiteFields = []string{"Website", "URL"}

	orgNameFields      = []string{"Org Full Name", "Org Short Name", "Organization"}
	orgShortNameFields = []string{"Org Short Name"}
	orgTypeFields      = []string{"Org Type", "Organization Type", "Type"}
	orgAgencyFields    = []string{
		"Org Donor Agencies", "Org Donor Agencies (Linked)",
		"Org Donor Agencies (from Agency)", "Donor Agencies",
	}
	orgWebsiteFields = []string{"Website", "URL"}

	projectProviderFields = []string{"Provider Orgs Full Name", "Provider Org", "Organization"}
	projectTypeFields     = []string{"Provider Org Type", "Org Type"}
	projectNameFields     = []string{"Project/Product Name", "Project Name", "Name"}
	projectDescFields     = []string{"Description", "Project Description"}
	projectWebsiteFields  = []string{"Website", "Project Website", "URL"}
	projectInvTypeFields  = []string{"Investment Type", "Investment Types", "Investment Type(s)"}
	projectInvThemeFields = []string{"Investment Theme", "Investment Themes", "Investment Theme(s)"}
	projectAgencyFields   = []string{"Project Donor Agencies", "Donor Agencies"}
	projectBudgetFields   = []string{"Budget", "Budget (USD)", "Total Budget"}
	projectProgramFields  = []string{"Funded by Specific Program", "Program Funded"}
)

// ResolveAgency resolves a raw agency row. Rows without a usable name
// resolve to a record with an empty Name; callers decide whether to skip.
func ResolveAgency(raw RawRecord) AgencyRecord {
	return AgencyRecord{
		ID:      raw.ID,
		Name:    firstString(raw.Fields, agencyNameFields),
		Country: firstString(raw.Fields, agencyCountryFields),
		Website: firstString(raw.Fields, agencyWebsiteFields),
	}
}

// ResolveOrg resolves a raw organization row.
func ResolveOrg(raw RawRecord) OrgRecord {
	name := firstString(raw.Fields, orgNameFields)
	if name == "" {
		name = raw.ID
	}
	return OrgRecord{
		ID:            raw.ID,
		Name:          name,
		ShortName:     firstString(raw.Fields, orgShortNameFields),
		Type:          firstString(raw.Fields, orgTypeFields),
		DonorAgencies: stringList(raw.Fields, orgAgencyFields),
		Website:       firstString(raw.Fields, orgWebsiteFields),
	}
}

// ResolveProject resolves a raw project row.
func ResolveProject(raw RawRecord) ProjectRecord {
	return ProjectRecord{
		ID:               raw.ID,
		Providers:        joinedString(raw.Fields, projectProviderFields),
		Name:             firstString(raw.Fields, projectNameFields),
		Description:      firstString(raw.Fields, projectDescFields),
		Website:          firstString(raw.Fields, projectWebsiteFields),
		InvestmentTypes:  joinedString(raw.Fields, projectInvTypeFields),
		InvestmentThemes: joinedString(raw.Fields, projectInvThemeFields),
		DonorAgencyIDs:   stringList(raw.Fields, projectAgencyFields),
		Budget:           firstString(raw.Fields, projectBudgetFields),
		ProgramFunded:    boolField(raw.Fields, projectProgramFields),
	}
}

// firstString returns the first non-empty string value among the aliased
// fields. List values yield their first string element.
func firstString(fields map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		switch v := fields[alias].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	return ""
}

// joinedString returns the first present aliased field with list values
// flattened to a comma-separated string, matching the flat-record wire
// form the normalizer splits.
func joinedString(fields map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		switch v := fields[alias].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []interface{}:
			var parts []string
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return ""
}

// stringList returns the first present aliased field as a flat string
// slice: list elements as-is, a scalar string split with the same
// paren- and quote-aware rule the normalizer uses.
func stringList(fields map[string]interface{}, aliases []string) []string {
	for _, alias := range aliases {
		switch v := fields[alias].(type) {
		case string:
			if parts := funding.SplitList(v); len(parts) > 0 {
				return parts
			}
		case []interface{}:
			var parts []string
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return parts
			}
		}
	}
	return nil
}

// boolField returns the first present aliased field as a boolean.
// Airtable checkboxes export as true/false; text exports as "Yes"/"No".
func boolField(fields map[string]interface{}, aliases []string) bool {
	for _, alias := range aliases {
		switch v := fields[alias].(type) {
		case bool:
			return v
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			if s != "" {
				return s == "yes" || s == "true" || s == "checked"
			}
		}
	}
	return false
}
