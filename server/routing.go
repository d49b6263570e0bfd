package server

import (
	"net/http"

	"github.com/crisisatlas/fundgraph/funding"
)

// setupRoutes configures all HTTP handlers on a fresh mux
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.corsMiddleware(s.handleHealth))
	mux.HandleFunc("/api/organizations", s.corsMiddleware(s.handleOrganizations)) // Filtered graph (GET, params: q/donors/types/themes)
	mux.HandleFunc("/api/facets/types", s.corsMiddleware(s.handleFacets(funding.FacetType)))
	mux.HandleFunc("/api/facets/themes", s.corsMiddleware(s.handleFacets(funding.FacetTheme)))
	mux.HandleFunc("/api/donors", s.corsMiddleware(s.handleDonors))
	mux.HandleFunc("/api/reload", s.corsMiddleware(s.handleReload)) // Rebuild graph from disk (POST)

	return mux
}

// corsMiddleware adds CORS headers using the configured allowed origins
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// originAllowed checks the request origin against server.allowed_origins.
// An empty list allows no cross-origin callers.
func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range *s.origins.Load() {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
