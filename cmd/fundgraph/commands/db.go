package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crisisatlas/fundgraph/conf"
	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/store"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the snapshot database",
	Long: `Manage the SQLite database holding raw table snapshots.

Examples:
  fundgraph db stats             # List stored snapshots
  fundgraph db prune --keep 5    # Keep only the newest 5 snapshots`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored snapshots and their record counts",
	RunE:  runDbStats,
}

var dbPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	RunE:  runDbPrune,
}

var (
	pruneKeepFlag int
)

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbPruneCmd)
	dbPruneCmd.Flags().IntVar(&pruneKeepFlag, "keep", 5, "Number of snapshots to keep")
}

func runDbStats(cmd *cobra.Command, args []string) error {
	config, err := conf.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	db, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	snapshots, err := store.ListSnapshots(db)
	if err != nil {
		return errors.Wrap(err, "failed to list snapshots")
	}

	fmt.Printf("Snapshot Database\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path: %s\n", config.Database.Path)
	fmt.Printf("Snapshots:     %d\n\n", len(snapshots))

	if len(snapshots) == 0 {
		fmt.Println("No snapshots recorded yet, run 'fundgraph ingest' first")
		return nil
	}

	for _, snap := range snapshots {
		fmt.Printf("  [%s] %s: %d orgs, %d agencies, %d projects\n",
			snap.CreatedAt.Format("2006-01-02 15:04:05"),
			snap.ID[:8],
			snap.Organizations,
			snap.Agencies,
			snap.Projects,
		)
	}
	return nil
}

func runDbPrune(cmd *cobra.Command, args []string) error {
	db, err := openDatabase("")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	pruned, err := store.Prune(db, pruneKeepFlag)
	if err != nil {
		return errors.Wrap(err, "failed to prune snapshots")
	}

	fmt.Printf("Pruned %d snapshots (kept newest %d)\n", pruned, pruneKeepFlag)
	return nil
}
