package server

import (
	"net/http"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/funding"
)

type healthResponse struct {
	Status        string `json:"status"`
	Organizations int    `json:"organizations"`
	Projects      int    `json:"projects"`
	LoadedAt      string `json:"loaded_at"`
}

type organizationsResponse struct {
	Organizations []funding.Organization `json:"organizations"`
	Total         int                    `json:"total"`
	TotalProjects int                    `json:"total_projects"`
}

type facetsResponse struct {
	Facet  string         `json:"facet"`
	Counts map[string]int `json:"counts"`
}

type donorEntry struct {
	Donor         string `json:"donor"`
	Organizations int    `json:"organizations"`
}

type donorsResponse struct {
	Donors []donorEntry `json:"donors"`
	Total  int          `json:"total"`
}

type reloadResponse struct {
	Status        string `json:"status"`
	Organizations int    `json:"organizations"`
	Projects      int    `json:"projects"`
}

// filterSpecFromQuery parses filter parameters from the query string.
// List parameters are comma separated; SplitList keeps parenthesized
// donor names like "Korea (Republic of)" intact.
func filterSpecFromQuery(r *http.Request) funding.FilterSpec {
	q := r.URL.Query()
	return funding.FilterSpec{
		SearchQuery:      q.Get("q"),
		Donors:           funding.SplitList(q.Get("donors")),
		InvestmentTypes:  funding.SplitList(q.Get("types")),
		InvestmentThemes: funding.SplitList(q.Get("themes")),
	}
}

// handleHealth reports server status and graph size
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	snap := s.snapshot()
	projects := 0
	for _, org := range snap.organizations {
		projects += len(org.Projects)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Organizations: len(snap.organizations),
		Projects:      projects,
		LoadedAt:      snap.loadedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// handleOrganizations returns organizations matching the filter
// parameters, with non-matching projects pruned from each.
func (s *Server) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	spec := filterSpecFromQuery(r)
	filtered := funding.Apply(s.snapshot().organizations, spec)

	projects := 0
	for _, org := range filtered {
		projects += len(org.Projects)
	}

	if filtered == nil {
		filtered = []funding.Organization{}
	}
	writeJSON(w, http.StatusOK, organizationsResponse{
		Organizations: filtered,
		Total:         len(filtered),
		TotalProjects: projects,
	})
}

// handleFacets returns per-value project counts for one facet under the
// current filter selection, with the facet's own selection ignored.
func (s *Server) handleFacets(facet funding.Facet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}

		spec := filterSpecFromQuery(r)
		counts, err := funding.CountByFacet(s.snapshot().organizations, spec, facet)
		if err != nil {
			s.logger.Errorw("Facet count failed", "facet", facet, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to count facets")
			return
		}

		writeJSON(w, http.StatusOK, facetsResponse{
			Facet:  string(facet),
			Counts: counts,
		})
	}
}

// handleDonors returns the donor vocabulary with per-donor org counts
func (s *Server) handleDonors(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	orgs := s.snapshot().organizations
	entries := make([]donorEntry, 0)
	for _, donor := range funding.DonorVocabulary(orgs) {
		visible := funding.Apply(orgs, funding.FilterSpec{Donors: []string{donor}})
		entries = append(entries, donorEntry{Donor: donor, Organizations: len(visible)})
	}

	writeJSON(w, http.StatusOK, donorsResponse{
		Donors: entries,
		Total:  len(entries),
	})
}

// handleReload rebuilds the graph from the data directory on demand
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.Reload(); err != nil {
		s.logger.Errorw("Manual reload failed", "error", err)
		if errors.IsSourceUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "Failed to load source tables")
			return
		}
		writeError(w, http.StatusInternalServerError, "Reload failed")
		return
	}

	snap := s.snapshot()
	projects := 0
	for _, org := range snap.organizations {
		projects += len(org.Projects)
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Status:        "reloaded",
		Organizations: len(snap.organizations),
		Projects:      projects,
	})
}
