// Package store keeps generated bundles in a SQLite database so a listing
// can be re-rendered later by artifact ID.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/cbgen/wire"
)

// ErrArtifactNotFound indicates the requested artifact doesn't exist
var ErrArtifactNotFound = errors.New("artifact not found")

var log = commonlog.GetLogger("cbgen.store")

// Artifact describes one stored bundle.
type Artifact struct {
	ID      string
	Program string
	Hash    string
	Lines   int
	Created time.Time
}

// Store handles SQLite storage for bundles
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (creating if needed) the artifact database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		program TEXT NOT NULL,
		hash TEXT NOT NULL,
		lines INTEGER NOT NULL,
		created INTEGER NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened store %s", dbPath)
	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a bundle under a fresh artifact ID.
func (s *Store) Save(b *wire.Bundle) (string, error) {
	data, err := wire.MarshalBundle(b)
	if err != nil {
		return "", fmt.Errorf("encoding bundle: %w", err)
	}
	hash, err := wire.Hash(b)
	if err != nil {
		return "", fmt.Errorf("hashing bundle: %w", err)
	}

	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT INTO artifacts (id, program, hash, lines, created, data) VALUES (?, ?, ?, ?, ?, ?)",
		id, b.Program, hash, b.Lines(), time.Now().UnixNano(), data,
	)
	if err != nil {
		return "", fmt.Errorf("saving artifact: %w", err)
	}
	log.Infof("saved artifact %s (%s, %d lines)", id, b.Program, b.Lines())
	return id, nil
}

// Load retrieves a bundle by artifact ID.
func (s *Store) Load(id string) (*wire.Bundle, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM artifacts WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("querying artifact: %w", err)
	}
	return wire.UnmarshalBundle(data)
}

// List returns every stored artifact, newest first.
func (s *Store) List() ([]Artifact, error) {
	rows, err := s.db.Query("SELECT id, program, hash, lines, created FROM artifacts ORDER BY created DESC, id")
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var created int64
		if err := rows.Scan(&a.ID, &a.Program, &a.Hash, &a.Lines, &created); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		a.Created = time.Unix(0, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an artifact.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM artifacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	if n == 0 {
		return ErrArtifactNotFound
	}
	return nil
}
