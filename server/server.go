// Package server exposes the funding graph over HTTP: filtered
// organization queries, facet counts, and the donor vocabulary.
package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crisisatlas/fundgraph/conf"
	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/funding"
	"github.com/crisisatlas/fundgraph/source"
)

// ShutdownTimeout is the maximum time to wait for graceful shutdown
const ShutdownTimeout = 10 * time.Second

// graphSnapshot is an immutable view of the nested graph. Handlers read
// whichever snapshot was current when their request arrived; reloads
// swap the pointer without blocking readers.
type graphSnapshot struct {
	organizations []funding.Organization
	loadedAt      time.Time
}

// Server serves the funding graph API
type Server struct {
	config  *conf.Config
	logger  *zap.SugaredLogger
	graph   atomic.Pointer[graphSnapshot]
	origins atomic.Pointer[[]string]
	watcher *source.DataWatcher
	httpSrv *http.Server
}

// NewServer creates a server and loads the initial graph from the
// configured data directory.
func NewServer(config *conf.Config, logger *zap.SugaredLogger) (*Server, error) {
	s := &Server{
		config: config,
		logger: logger,
	}
	s.origins.Store(&config.Server.AllowedOrigins)

	if err := s.Reload(); err != nil {
		return nil, errors.Wrap(err, "failed to load initial graph")
	}

	return s, nil
}

// UpdateConfig applies runtime-adjustable settings from a reloaded
// config. Only CORS origins apply live; port and data-dir changes need
// a restart.
func (s *Server) UpdateConfig(config *conf.Config) {
	s.origins.Store(&config.Server.AllowedOrigins)
	s.logger.Infow("Applied reloaded config", "allowed_origins", config.Server.AllowedOrigins)
}

// Reload rebuilds the graph from the data directory and swaps it in.
// In-flight requests keep reading the previous snapshot.
func (s *Server) Reload() error {
	started := time.Now()

	orgs, err := source.BuildGraph(s.config.Data.Dir, s.logger)
	if err != nil {
		return err
	}

	snapshot := &graphSnapshot{
		organizations: orgs,
		loadedAt:      time.Now(),
	}
	s.graph.Store(snapshot)

	projectCount := 0
	for _, org := range orgs {
		projectCount += len(org.Projects)
	}
	s.logger.Infow("Graph loaded",
		"organizations", len(orgs),
		"projects", projectCount,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

// snapshot returns the current graph snapshot. Never nil after NewServer.
func (s *Server) snapshot() *graphSnapshot {
	return s.graph.Load()
}
