package commands

import (
	"database/sql"

	"github.com/crisisatlas/fundgraph/conf"
	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/funding"
	"github.com/crisisatlas/fundgraph/logger"
	"github.com/crisisatlas/fundgraph/source"
	"github.com/crisisatlas/fundgraph/store"
)

// filterFlags are the filter dimensions shared by query and facets.
type filterFlags struct {
	search string
	donors []string
	types  []string
	themes []string
}

func (f *filterFlags) spec() funding.FilterSpec {
	return funding.FilterSpec{
		SearchQuery:      f.search,
		Donors:           f.donors,
		InvestmentTypes:  f.types,
		InvestmentThemes: f.themes,
	}
}

// loadConfig loads and validates the configuration, with an optional
// data-dir override from a command flag.
func loadConfig(dataDirFlag string) (*conf.Config, error) {
	config, err := conf.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if dataDirFlag != "" {
		config.Data.Dir = dataDirFlag
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

// loadGraph builds the nested graph from the configured data directory.
func loadGraph(dataDirFlag string) ([]funding.Organization, error) {
	config, err := loadConfig(dataDirFlag)
	if err != nil {
		return nil, err
	}
	return source.BuildGraph(config.Data.Dir, logger.Logger)
}

// openDatabase opens and migrates the snapshot database. An empty path
// uses the configured one.
func openDatabase(path string) (*sql.DB, error) {
	if path == "" {
		config, err := conf.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		path = config.Database.Path
	}

	db, err := store.Open(path, logger.Logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db, logger.Logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
