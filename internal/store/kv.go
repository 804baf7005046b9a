package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Entry describes one stored key
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value
func (s *Store) Put(key, value string) error {
	return s.PutMany(map[string]string{key: value})
}

// PutMany stores several keys atomically
func (s *Store) PutMany(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare put: %w", err)
		}
		defer stmt.Close()

		for _, k := range keys {
			if _, err := stmt.Exec(k, values[k], now); err != nil {
				return fmt.Errorf("failed to put %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Entries lists the stored keys, most recently written first
func (s *Store) Entries() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT key, LENGTH(value), updated_at FROM kv
		ORDER BY updated_at DESC, key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Size, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
