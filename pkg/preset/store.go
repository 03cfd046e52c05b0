// Package preset persists node parameter presets. Presets are opaque
// blobs produced by the engine, keyed by a node's full hierarchical path
// so they survive asset rebuilds and sessions.
package preset

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed preset map.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the preset database at path.
func Open(path string) (*Store, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" {
		return nil, errors.New("preset: missing db path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS presets (
			node_path        TEXT PRIMARY KEY,
			preset           BLOB NOT NULL,
			updated_at_unix  INTEGER NOT NULL
		)`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Set stores or replaces the preset for a node path.
func (s *Store) Set(path string, preset []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO presets (node_path, preset, updated_at_unix)
		VALUES (?, ?, ?)
		ON CONFLICT(node_path) DO UPDATE SET
			preset = excluded.preset,
			updated_at_unix = excluded.updated_at_unix`,
		path, preset, time.Now().Unix())
	return err
}

// Get returns the preset for a node path.
func (s *Store) Get(path string) ([]byte, bool) {
	var preset []byte
	err := s.db.QueryRow(
		`SELECT preset FROM presets WHERE node_path = ?`, path).Scan(&preset)
	if err != nil {
		return nil, false
	}
	return preset, true
}

// Contains reports whether a preset exists for the node path.
func (s *Store) Contains(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Delete removes the preset for a node path.
func (s *Store) Delete(path string) error {
	_, err := s.db.Exec(`DELETE FROM presets WHERE node_path = ?`, path)
	return err
}

// Paths returns all stored node paths.
func (s *Store) Paths() ([]string, error) {
	rows, err := s.db.Query(`SELECT node_path FROM presets ORDER BY node_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
