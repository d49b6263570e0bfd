package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisisatlas/fundgraph/funding"
)

func fixtureTables() *Tables {
	return &Tables{
		Agencies: []RawRecord{
			{ID: "ag-giz", Fields: map[string]interface{}{
				"Agency/Department Name": "GIZ",
				"Country Name":           "Germany",
			}},
			{ID: "ag-afd", Fields: map[string]interface{}{
				"Agency/Department Name": "AFD",
				"Country Name":           "France",
			}},
		},
		Organizations: []RawRecord{
			{ID: "org-alpha", Fields: map[string]interface{}{
				"Org Full Name":      "Alpha",
				"Org Short Name":     "ALP",
				"Org Type":           "NGO",
				"Org Donor Agencies": "GIZ",
			}},
		},
		Projects: []RawRecord{
			{ID: "proj-1", Fields: map[string]interface{}{
				"Provider Orgs Full Name": "Alpha",
				"Project/Product Name":    "Crisis Atlas",
				"Investment Theme":        "Health",
				"Project Donor Agencies":  []interface{}{"ag-afd"},
			}},
			{ID: "proj-2", Fields: map[string]interface{}{
				"Provider Orgs Full Name": "Beta",
				"Project/Product Name":    "Unaffiliated Tool",
				"Project Donor Agencies":  []interface{}{"AFD"}, // by name
			}},
		},
	}
}

func TestBuildGraphInputs(t *testing.T) {
	records, profiles := BuildGraphInputs(fixtureTables(), nil)
	require.Len(t, records, 2)
	require.Len(t, profiles, 1)

	profile := profiles["alpha"]
	assert.Equal(t, "org-alpha", profile.ID)
	assert.Equal(t, "alp", profile.Key)
	assert.Equal(t, "NGO", profile.Type)
	require.Len(t, profile.Agencies, 1)
	assert.Equal(t, "Germany", profile.Agencies[0].Donor)

	// Project agency resolved by record id
	require.Len(t, records[0].Agencies, 1)
	assert.Equal(t, "AFD", records[0].Agencies[0].Name)

	// Project agency resolved by name fallback
	require.Len(t, records[1].Agencies, 1)
	assert.Equal(t, "France", records[1].Agencies[0].Donor)
}

func TestBuildGraphInputsUnmatchedAgencyTokenDropped(t *testing.T) {
	tables := fixtureTables()
	tables.Organizations[0].Fields["Org Donor Agencies"] = "GIZ, Renamed Agency Nobody Knows"

	_, profiles := BuildGraphInputs(tables, nil)
	assert.Len(t, profiles["alpha"].Agencies, 1)
}

func TestBuildGraphEndToEnd(t *testing.T) {
	records, profiles := BuildGraphInputs(fixtureTables(), nil)
	orgs := funding.NormalizeWithProfiles(records, profiles, nil)
	require.Len(t, orgs, 2)

	alpha := orgs[0]
	assert.Equal(t, "org-alpha", alpha.ID)
	assert.Equal(t, "NGO", alpha.Type)
	require.Len(t, alpha.Projects, 1)
	assert.Equal(t, "Crisis Atlas", alpha.Projects[0].Name)
	assert.Equal(t, []string{"Health"}, alpha.Projects[0].InvestmentThemes)

	// Org-level donor from the profile, project-level from the record
	infos := funding.ResolveDonorInfo(alpha)
	require.Len(t, infos, 2)
	assert.Equal(t, funding.DonorInfo{Donor: "Germany", IsOrgLevel: true}, infos[0])
	assert.Equal(t, funding.DonorInfo{Donor: "France", IsOrgLevel: false}, infos[1])

	// Beta has no profile: synthesized identity
	beta := orgs[1]
	assert.Equal(t, "beta", beta.ID)
	assert.Equal(t, "Unknown", beta.Type)
}
