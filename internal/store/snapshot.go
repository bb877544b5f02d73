package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rowanvale/questlog/internal/model"
)

// SnapshotStore persists the single engine snapshot as a JSON document
// keyed by the opaque per-installation identifier. It only ever reads or
// replaces the whole document — there is no write path into individual
// entities.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Load returns the stored snapshot for the install, or nil when none
// exists. A document that fails to decode also returns nil: the engine
// falls back to defaults rather than crash on a corrupt row.
func (s *SnapshotStore) Load(installID string) (*model.Snapshot, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM snapshots WHERE install_id = ?`, installID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return nil, nil
	}
	snap.Normalize()
	return &snap, nil
}

// Save replaces the stored snapshot wholesale.
func (s *SnapshotStore) Save(installID string, snap *model.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshots (install_id, document, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(install_id) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		installID, string(doc),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Delete removes the stored snapshot. Missing rows are a no-op.
func (s *SnapshotStore) Delete(installID string) error {
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE install_id = ?`, installID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
