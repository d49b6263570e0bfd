package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/conf"
	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/logger"
	"github.com/crisisatlas/fundgraph/server"
)

// ServeCmd starts the fundgraph HTTP API server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the fundgraph HTTP API server",
	Long: `Launch the HTTP API serving filtered organization queries, facet
counts, and the donor vocabulary. The data directory is watched so new
exports are picked up without a restart.`,
	RunE: runServe,
}

var (
	servePortFlag    int
	serveDataDirFlag string
)

func init() {
	ServeCmd.Flags().IntVar(&servePortFlag, "port", 0, "Port to listen on (overrides config)")
	ServeCmd.Flags().StringVar(&serveDataDirFlag, "data-dir", "", "Data directory (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(serveDataDirFlag)
	if err != nil {
		return err
	}
	if servePortFlag > 0 {
		config.Server.Port = &servePortFlag
	}

	srv, err := server.NewServer(config, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	// Live-apply config edits while the server runs
	if path := conf.ProjectConfigPath(); path != "" {
		watcher, err := conf.NewConfigWatcher(path)
		if err != nil {
			logger.Warnw("Config watcher unavailable", "path", path, "error", err)
		} else {
			watcher.OnReload(func(c *conf.Config) error {
				srv.UpdateConfig(c)
				return nil
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	pterm.Info.Printf("Serving funding graph from %s on port %d\n",
		config.Data.Dir, config.Server.EffectivePort())

	// First Ctrl+C starts graceful shutdown, second forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	select {
	case err := <-errChan:
		cancel()
		return err
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")
		cancel()

		select {
		case err := <-errChan:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}
