package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAgencyAliases(t *testing.T) {
	rec := ResolveAgency(RawRecord{
		ID: "ag1",
		Fields: map[string]interface{}{
			"Agency/Department Name": "German Corporation for International Cooperation (GIZ)",
			"Country Name":           []interface{}{"Germany"},
			"Website":                "https://www.giz.de",
		},
	})

	assert.Equal(t, "ag1", rec.ID)
	assert.Equal(t, "German Corporation for International Cooperation (GIZ)", rec.Name)
	assert.Equal(t, "Germany", rec.Country)
	assert.Equal(t, "https://www.giz.de", rec.Website)
}

func TestResolveAgencyPrefersFirstAlias(t *testing.T) {
	rec := ResolveAgency(RawRecord{
		ID: "ag1",
		Fields: map[string]interface{}{
			"Name":        "Preferred",
			"Agency Name": "Fallback",
		},
	})
	assert.Equal(t, "Preferred", rec.Name)
}

func TestResolveOrg(t *testing.T) {
	rec := ResolveOrg(RawRecord{
		ID: "org1",
		Fields: map[string]interface{}{
			"Org Full Name":      "Data Friendly Space",
			"Org Short Name":     "DFS",
			"Org Type":           "NGO",
			"Org Donor Agencies": "GIZ, Federal Foreign Office (FFO)",
		},
	})

	assert.Equal(t, "Data Friendly Space", rec.Name)
	assert.Equal(t, "DFS", rec.ShortName)
	assert.Equal(t, "NGO", rec.Type)
	assert.Equal(t, []string{"GIZ", "Federal Foreign Office (FFO)"}, rec.DonorAgencies)
}

func TestResolveOrgFallsBackToID(t *testing.T) {
	rec := ResolveOrg(RawRecord{ID: "org1", Fields: map[string]interface{}{}})
	assert.Equal(t, "org1", rec.Name)
}

func TestResolveProject(t *testing.T) {
	rec := ResolveProject(RawRecord{
		ID: "proj1",
		Fields: map[string]interface{}{
			"Provider Orgs Full Name":    "Alpha, Beta",
			"Project/Product Name":       "Crisis Atlas",
			"Description":                "Maps for responders",
			"Investment Type":            []interface{}{"Data Sets & Commons", "Infrastructure & Platforms"},
			"Investment Theme":           "Health, Displacement",
			"Project Donor Agencies":     []interface{}{"ag1", "ag2"},
			"Budget":                     "1,000,000",
			"Funded by Specific Program": true,
		},
	})

	assert.Equal(t, "Alpha, Beta", rec.Providers)
	assert.Equal(t, "Crisis Atlas", rec.Name)
	assert.Equal(t, "Data Sets & Commons, Infrastructure & Platforms", rec.InvestmentTypes)
	assert.Equal(t, "Health, Displacement", rec.InvestmentThemes)
	assert.Equal(t, []string{"ag1", "ag2"}, rec.DonorAgencyIDs)
	assert.Equal(t, "1,000,000", rec.Budget)
	assert.True(t, rec.ProgramFunded)
}

func TestBoolFieldTextForms(t *testing.T) {
	assert.True(t, boolField(map[string]interface{}{"Program Funded": "Yes"}, projectProgramFields))
	assert.False(t, boolField(map[string]interface{}{"Program Funded": "No"}, projectProgramFields))
	assert.False(t, boolField(map[string]interface{}{}, projectProgramFields))
}

func TestStringListRespectsParentheses(t *testing.T) {
	got := stringList(map[string]interface{}{
		"Donor Agencies": "Humanitarian OpenStreetMap Team (HOT, US), GIZ",
	}, orgAgencyFields)
	assert.Equal(t, []string{"Humanitarian OpenStreetMap Team (HOT, US)", "GIZ"}, got)
}
