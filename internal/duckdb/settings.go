package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
)

// SettingsStorage keeps one encoded settings record per namespace in the kv
// table. It satisfies settings.Storage.
type SettingsStorage struct {
	store     *Store
	namespace string
}

// NewSettingsStorage returns a storage bound to namespace.
func NewSettingsStorage(store *Store, namespace string) *SettingsStorage {
	return &SettingsStorage{store: store, namespace: namespace}
}

// Load returns the stored record, or nil when the namespace has never been saved.
func (s *SettingsStorage) Load() ([]byte, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	ctx, cancel := s.store.queryContext()
	defer cancel()

	var data []byte
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE namespace = ?", s.namespace).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("duckdb: load %s: %w", s.namespace, err)
	}
	return data, nil
}

// Save upserts the record for the namespace.
func (s *SettingsStorage) Save(data []byte) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	ctx, cancel := s.store.queryContext()
	defer cancel()

	_, err := s.store.db.ExecContext(ctx, `INSERT INTO kv (namespace, value, updated_at)
		VALUES (?, ?, current_timestamp)
		ON CONFLICT (namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, data)
	if err != nil {
		return fmt.Errorf("duckdb: save %s: %w", s.namespace, err)
	}
	return nil
}
