package source

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/crisisatlas/fundgraph/errors"
)

// Canonical table filenames in the data directory.
const (
	OrganizationsFile = "organizations-table.json"
	AgenciesFile      = "agencies-table.json"
	ProjectsFile      = "ecosystem-table.json"
)

// Tables holds the three raw source tables.
type Tables struct {
	Organizations []RawRecord
	Agencies      []RawRecord
	Projects      []RawRecord
}

// LoadDir reads the three source tables from a data directory. A missing
// file yields an empty table with a warning, matching the pipeline's
// tolerant behavior; malformed JSON is fatal and surfaces as
// ErrSourceUnavailable, never as a partially loaded table set.
func LoadDir(dir string, log *zap.SugaredLogger) (*Tables, error) {
	tables := &Tables{}

	loads := []struct {
		file string
		dest *[]RawRecord
	}{
		{OrganizationsFile, &tables.Organizations},
		{AgenciesFile, &tables.Agencies},
		{ProjectsFile, &tables.Projects},
	}

	for _, l := range loads {
		records, err := loadTable(filepath.Join(dir, l.file), log)
		if err != nil {
			return nil, err
		}
		*l.dest = records
	}

	if log != nil {
		log.Infow("Loaded source tables",
			"dir", dir,
			"organizations", len(tables.Organizations),
			"agencies", len(tables.Agencies),
			"projects", len(tables.Projects),
		)
	}

	return tables, nil
}

func loadTable(path string, log *zap.SugaredLogger) ([]RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if log != nil {
				log.Warnw("Source table missing, treating as empty", "path", path)
			}
			return nil, nil
		}
		return nil, errors.WrapSourceUnavailable(err, "read "+path)
	}

	var records []RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapSourceUnavailable(err, "parse "+path)
	}
	return records, nil
}
