package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const installIDKey = "install_id"

// SettingsStore is a small key-value table for installation-local
// settings.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetOrCreateInstallID returns the opaque per-installation identifier,
// generating and caching one on first use. The identifier doubles as the
// document key in the local store and the remote mirror.
func (s *SettingsStore) GetOrCreateInstallID() (string, error) {
	id, err := s.Get(installIDKey)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := s.Set(installIDKey, id); err != nil {
		return "", err
	}
	return id, nil
}
