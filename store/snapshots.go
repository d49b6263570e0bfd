package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/crisisatlas/fundgraph/errors"
	"github.com/crisisatlas/fundgraph/source"
)

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Organizations int       `json:"organizations"`
	Agencies      int       `json:"agencies"`
	Projects      int       `json:"projects"`
}

// SaveSnapshot stores the raw tables as a new snapshot and returns its id.
func SaveSnapshot(db *sql.DB, tables *source.Tables) (string, error) {
	orgs, err := json.Marshal(tables.Organizations)
	if err != nil {
		return "", errors.Wrap(err, "marshal organizations")
	}
	agencies, err := json.Marshal(tables.Agencies)
	if err != nil {
		return "", errors.Wrap(err, "marshal agencies")
	}
	projects, err := json.Marshal(tables.Projects)
	if err != nil {
		return "", errors.Wrap(err, "marshal projects")
	}

	id := uuid.NewString()
	_, err = db.Exec(
		"INSERT INTO snapshots (id, organizations, agencies, projects) VALUES (?, ?, ?, ?)",
		id, string(orgs), string(agencies), string(projects),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert snapshot")
	}
	return id, nil
}

// LoadLatestSnapshot returns the most recent snapshot's tables, or
// ErrNotFound when no snapshot has been stored yet.
func LoadLatestSnapshot(db *sql.DB) (*source.Tables, string, error) {
	row := db.QueryRow(
		"SELECT id, organizations, agencies, projects FROM snapshots ORDER BY created_at DESC, id LIMIT 1",
	)

	var id, orgs, agencies, projects string
	if err := row.Scan(&id, &orgs, &agencies, &projects); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", errors.Wrap(errors.ErrNotFound, "no snapshots stored")
		}
		return nil, "", errors.Wrap(err, "query latest snapshot")
	}

	tables := &source.Tables{}
	if err := json.Unmarshal([]byte(orgs), &tables.Organizations); err != nil {
		return nil, "", errors.WrapSourceUnavailable(err, "decode organizations snapshot")
	}
	if err := json.Unmarshal([]byte(agencies), &tables.Agencies); err != nil {
		return nil, "", errors.WrapSourceUnavailable(err, "decode agencies snapshot")
	}
	if err := json.Unmarshal([]byte(projects), &tables.Projects); err != nil {
		return nil, "", errors.WrapSourceUnavailable(err, "decode projects snapshot")
	}

	return tables, id, nil
}

// ListSnapshots returns stored snapshots, newest first.
func ListSnapshots(db *sql.DB) ([]SnapshotInfo, error) {
	rows, err := db.Query(
		"SELECT id, created_at, organizations, agencies, projects FROM snapshots ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, errors.Wrap(err, "query snapshots")
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var orgs, agencies, projects string
		if err := rows.Scan(&info.ID, &info.CreatedAt, &orgs, &agencies, &projects); err != nil {
			return nil, errors.Wrap(err, "scan snapshot row")
		}
		info.Organizations = countRecords(orgs)
		info.Agencies = countRecords(agencies)
		info.Projects = countRecords(projects)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// countRecords counts records in a stored JSON payload; corrupt payloads
// count as zero rather than failing a listing.
func countRecords(payload string) int {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return 0
	}
	return len(records)
}

// Prune deletes all but the newest keep snapshots and reports how many
// rows were removed.
func Prune(db *sql.DB, keep int) (int64, error) {
	if keep < 0 {
		return 0, errors.NewInvalidRequestError("keep must be >= 0, got %d", keep)
	}
	res, err := db.Exec(
		"DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY created_at DESC, id LIMIT ?)",
		keep,
	)
	if err != nil {
		return 0, errors.Wrap(err, "prune snapshots")
	}
	return res.RowsAffected()
}
