package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crisisatlas/fundgraph/conf"
	"github.com/crisisatlas/fundgraph/source"
)

func writeTable(t *testing.T, dir, file string, records []source.RawRecord) {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0o644))
}

// fixtureDataDir lays out a small but complete data directory: two donor
// agencies, one profiled organization, and two projects split across two
// organizations.
func fixtureDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeTable(t, dir, source.AgenciesFile, []source.RawRecord{
		{ID: "ag-giz", Fields: map[string]interface{}{
			"Agency/Department Name": "GIZ",
			"Country Name":           "Germany",
		}},
		{ID: "ag-afd", Fields: map[string]interface{}{
			"Agency/Department Name": "AFD",
			"Country Name":           "France",
		}},
	})
	writeTable(t, dir, source.OrganizationsFile, []source.RawRecord{
		{ID: "org-alpha", Fields: map[string]interface{}{
			"Org Full Name":      "Alpha",
			"Org Short Name":     "ALP",
			"Org Type":           "NGO",
			"Org Donor Agencies": "GIZ",
		}},
	})
	writeTable(t, dir, source.ProjectsFile, []source.RawRecord{
		{ID: "proj-1", Fields: map[string]interface{}{
			"Provider Orgs Full Name": "Alpha",
			"Project/Product Name":    "Crisis Atlas",
			"Investment Type":         "Data Sets & Commons",
			"Investment Theme":        "Health",
		}},
		{ID: "proj-2", Fields: map[string]interface{}{
			"Provider Orgs Full Name": "Beta",
			"Project/Product Name":    "Field Mapper",
			"Investment Type":         "Infrastructure & Platforms",
			"Investment Theme":        "Health, Displacement",
			"Project Donor Agencies":  []interface{}{"ag-afd"},
		}},
	})

	return dir
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := fixtureDataDir(t)
	config := &conf.Config{
		Data: conf.DataConfig{Dir: dir},
		Server: conf.ServerConfig{
			AllowedOrigins: []string{"https://dashboard.example.org"},
		},
	}
	s, err := NewServer(config, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s, dir
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Organizations)
	assert.Equal(t, 2, resp.Projects)
	assert.NotEmpty(t, resp.LoadedAt)
}

func TestHandleOrganizationsUnfiltered(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/organizations")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp organizationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.TotalProjects)
}

func TestHandleOrganizationsDonorFilter(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/organizations?donors=Germany")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp organizationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Alpha", resp.Organizations[0].Name)
	assert.Equal(t, 1, resp.TotalProjects)
}

func TestHandleOrganizationsSearch(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/organizations?q=mapper")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp organizationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Field Mapper", resp.Organizations[0].Projects[0].Name)
}

func TestHandleOrganizationsNoMatchReturnsEmptyList(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/organizations?q=zzzz")
	require.Equal(t, http.StatusOK, rec.Code)
	// Empty result is an empty array, never null
	assert.Contains(t, rec.Body.String(), `"organizations":[]`)
}

func TestHandleFacetsThemes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/facets/themes?donors=Germany")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp facetsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "theme", resp.Facet)
	assert.Equal(t, 1, resp.Counts["health"])
	// Zero-count values stay enumerated so the UI never loses options
	zero, ok := resp.Counts["displacement"]
	require.True(t, ok)
	assert.Equal(t, 0, zero)
}

func TestHandleFacetsTypes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/facets/types")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp facetsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "type", resp.Facet)
	assert.Equal(t, 1, resp.Counts["data sets & commons"])
	assert.Equal(t, 1, resp.Counts["infrastructure & platforms"])
}

func TestHandleDonors(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/donors")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp donorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, donorEntry{Donor: "France", Organizations: 1}, resp.Donors[0])
	assert.Equal(t, donorEntry{Donor: "Germany", Organizations: 1}, resp.Donors[1])
}

func TestHandleReload(t *testing.T) {
	s, dir := newTestServer(t)

	// Drop the second project and reload
	writeTable(t, dir, source.ProjectsFile, []source.RawRecord{
		{ID: "proj-1", Fields: map[string]interface{}{
			"Provider Orgs Full Name": "Alpha",
			"Project/Product Name":    "Crisis Atlas",
		}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reloaded", resp.Status)
	assert.Equal(t, 1, resp.Organizations)
	assert.Equal(t, 1, resp.Projects)
}

func TestHandleReloadCorruptSource(t *testing.T) {
	s, dir := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, source.ProjectsFile), []byte("{broken"), 0o644))

	rec := doRequest(t, s, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// The previous snapshot survives a failed reload
	health := doRequest(t, s, http.MethodGet, "/health")
	var resp healthResponse
	require.NoError(t, json.Unmarshal(health.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Projects)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(t, s, http.MethodPost, "/health").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(t, s, http.MethodGet, "/api/reload").Code)
}

func TestCORSHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://dashboard.example.org")
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	assert.Equal(t, "https://dashboard.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/organizations", nil)
	req.Header.Set("Origin", "https://dashboard.example.org")
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
