package checkpoint

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

const schema = `
CREATE TABLE IF NOT EXISTS migration_checkpoints (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenDB opens (and initializes) the checkpoint database at the given path.
// The handle is shared by every pair-scoped store.
func OpenDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint db %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing checkpoint schema: %w", err)
	}
	return db, nil
}

// SQLiteStore is the durable Store implementation, scoped to one
// (source, destination) project pair over a shared database handle.
type SQLiteStore struct {
	db   *sqlx.DB
	pair string
}

// NewSQLiteStore returns a pair-scoped store over an open checkpoint db.
func NewSQLiteStore(db *sqlx.DB, sourceProject, destProject string) *SQLiteStore {
	return &SQLiteStore{db: db, pair: pairKey(sourceProject, destProject)}
}

// HasCheckpoint reports whether the pair's marker key exists.
func (s *SQLiteStore) HasCheckpoint() (bool, error) {
	var v string
	err := s.db.Get(&v, `SELECT value FROM migration_checkpoints WHERE key = ?`, s.pair)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading checkpoint marker: %w", err)
	}
	return true, nil
}

// SaveCursor upserts the stream cursor and the pair marker in one
// transaction, so a marker never exists without having been written through
// this path.
func (s *SQLiteStore) SaveCursor(streamKey, cursor string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO migration_checkpoints (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, s.pair, "1"); err != nil {
		return fmt.Errorf("saving checkpoint marker: %w", err)
	}
	if _, err := tx.Exec(upsert, cursorKey(s.pair, streamKey), cursor); err != nil {
		return fmt.Errorf("saving cursor %s: %w", streamKey, err)
	}
	return tx.Commit()
}

// GetCursor returns the saved cursor for a stream, or "" when none exists.
func (s *SQLiteStore) GetCursor(streamKey string) (string, error) {
	var v string
	err := s.db.Get(&v, `SELECT value FROM migration_checkpoints WHERE key = ?`, cursorKey(s.pair, streamKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cursor %s: %w", streamKey, err)
	}
	return v, nil
}

// Clear removes the marker and every cursor with the pair's prefix.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(
		`DELETE FROM migration_checkpoints WHERE key = ? OR key LIKE ?`,
		s.pair, s.pair+"_cursor_%")
	if err != nil {
		return fmt.Errorf("clearing checkpoints: %w", err)
	}
	return nil
}
