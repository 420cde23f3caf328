// Package journal records every mutation steward makes in a SQLite
// database, one row per operation. The journal is append-only history:
// nothing in steward reads it back except the journal command, and losing
// it loses nothing but the audit trail.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/steward/pkg/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mutations (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    at        TEXT NOT NULL,
    kind      TEXT NOT NULL,
    item      TEXT NOT NULL,
    op        TEXT NOT NULL,
    detail    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_mutations_kind ON mutations(kind);
`

// Entry is one recorded mutation.
type Entry struct {
	ID     int64
	At     time.Time
	Kind   types.Kind
	Item   string
	Op     string
	Detail string
}

// Journal is an open mutation journal.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one mutation row.
func (j *Journal) Record(kind types.Kind, item, op, detail string) error {
	_, err := j.db.Exec(
		"INSERT INTO mutations (at, kind, item, op, detail) VALUES (?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), string(kind), item, op, detail,
	)
	if err != nil {
		return fmt.Errorf("recording mutation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(
		"SELECT id, at, kind, item, op, detail FROM mutations ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &at, (*string)(&e.Kind), &e.Item, &e.Op, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		if parsed, perr := time.Parse(time.RFC3339, at); perr == nil {
			e.At = parsed
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
