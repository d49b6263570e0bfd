package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/logger"
	"github.com/crisisatlas/fundgraph/source"
	"github.com/crisisatlas/fundgraph/store"
)

// IngestCmd fetches the source tables from the upstream base
var IngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch source tables from the upstream base",
	Long: `Fetch the organizations, agencies, and project tables from the
configured upstream API, write them into the data directory, and record
a snapshot in the database for rollback.

The API key is read from FUNDGRAPH_FETCH_API_KEY; it is never stored in
a config file.

Examples:
  fundgraph ingest                     # Fetch all tables and snapshot them
  fundgraph ingest --keep 5            # Also prune old snapshots to the newest 5
  fundgraph ingest --no-snapshot       # Skip the database snapshot`,
	RunE: runIngest,
}

var (
	ingestDataDirFlag string
	ingestKeepFlag    int
	ingestNoSnapshot  bool
)

func init() {
	IngestCmd.Flags().StringVar(&ingestDataDirFlag, "data-dir", "", "Data directory (overrides config)")
	IngestCmd.Flags().IntVar(&ingestKeepFlag, "keep", 0, "Prune stored snapshots to the newest N (0 = keep all)")
	IngestCmd.Flags().BoolVar(&ingestNoSnapshot, "no-snapshot", false, "Skip recording a database snapshot")
}

func runIngest(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(ingestDataDirFlag)
	if err != nil {
		return err
	}
	if config.Fetch.BaseURL == "" {
		return errors.New("fetch.base_url is not configured")
	}
	if config.Fetch.APIKey == "" {
		return errors.New("FUNDGRAPH_FETCH_API_KEY is not set")
	}

	client := source.NewClient(config.Fetch.BaseURL, config.Fetch.APIKey, source.ClientOptions{
		Timeout:           time.Duration(config.Fetch.TimeoutSeconds) * time.Second,
		RequestsPerSecond: config.Fetch.RequestsPerSecond,
		Logger:            logger.Logger,
	})

	ctx := cmd.Context()
	tables := &source.Tables{}

	fetches := []struct {
		label string
		table string
		dest  *[]source.RawRecord
	}{
		{"organizations", config.Fetch.OrganizationsTable, &tables.Organizations},
		{"agencies", config.Fetch.AgenciesTable, &tables.Agencies},
		{"projects", config.Fetch.ProjectsTable, &tables.Projects},
	}
	for _, f := range fetches {
		records, err := client.FetchTable(ctx, f.table)
		if err != nil {
			return errors.Wrapf(err, "failed to fetch %s table", f.label)
		}
		*f.dest = records
		pterm.Info.Printf("Fetched %d %s records\n", len(records), f.label)
	}

	if err := writeTables(config.Data.Dir, tables); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote source tables to %s\n", config.Data.Dir)

	if ingestNoSnapshot {
		return nil
	}

	db, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	id, err := store.SaveSnapshot(db, tables)
	if err != nil {
		return errors.Wrap(err, "failed to save snapshot")
	}
	pterm.Success.Printf("Recorded snapshot %s\n", id)

	if ingestKeepFlag > 0 {
		pruned, err := store.Prune(db, ingestKeepFlag)
		if err != nil {
			return errors.Wrap(err, "failed to prune snapshots")
		}
		if pruned > 0 {
			pterm.Info.Printf("Pruned %d old snapshots\n", pruned)
		}
	}
	return nil
}

// writeTables writes the three tables into the data directory as the
// canonical *-table.json files.
func writeTables(dir string, tables *source.Tables) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create data dir %s", dir)
	}

	writes := []struct {
		file    string
		records []source.RawRecord
	}{
		{source.OrganizationsFile, tables.Organizations},
		{source.AgenciesFile, tables.Agencies},
		{source.ProjectsFile, tables.Projects},
	}
	for _, w := range writes {
		data, err := json.MarshalIndent(w.records, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "failed to marshal %s", w.file)
		}
		path := filepath.Join(dir, w.file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	return nil
}
