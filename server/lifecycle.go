package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/source"
)

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully. The data directory is watched for changes so fresh
// exports are picked up without a restart.
func (s *Server) Start(ctx context.Context) error {
	watcher, err := source.NewDataWatcher(s.config.Data.Dir, s.logger)
	if err != nil {
		// The watcher is a convenience; the server still works without it
		s.logger.Warnw("Data watcher unavailable, continuing without live reload", "error", err)
	} else {
		s.watcher = watcher
		watcher.OnReload(s.Reload)
		watcher.Start()
	}

	port := s.config.Server.EffectivePort()
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.setupRoutes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server listening", "port", port)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopWatcher()
		return errors.Wrap(err, "HTTP server failed")
	case <-ctx.Done():
		return s.Stop()
	}
}

// Stop gracefully shuts down the server and the data watcher
func (s *Server) Stop() error {
	s.logger.Infow("Initiating server shutdown")

	s.stopWatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}

	s.logger.Infow("Server shutdown complete")
	return nil
}

func (s *Server) stopWatcher() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Stop(); err != nil {
		s.logger.Warnw("Failed to stop data watcher", "error", err)
	}
	s.watcher = nil
}
