package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"quantisuite/internal/calc"
	"quantisuite/internal/history"
)

// Store keeps the history in a SQLite table. position 0 is the newest entry.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates the database file and schema if needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		position INTEGER PRIMARY KEY,
		expression TEXT NOT NULL,
		result TEXT NOT NULL,
		type TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_type ON history(type);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Load(ctx context.Context) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expression, result, type, timestamp FROM history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var (
			e    history.Entry
			kind string
			ts   string
		)
		if err := rows.Scan(&e.Expression, &e.Result, &kind, &ts); err != nil {
			return nil, err
		}
		e.Type = calc.Kind(kind)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save rewrites the table inside one transaction.
func (s *Store) Save(ctx context.Context, entries []history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history (position, expression, result, type, timestamp) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		_, err := stmt.ExecContext(ctx, i, e.Expression, e.Result, string(e.Type), e.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// CountByType reports how many entries each calculator produced.
func (s *Store) CountByType(ctx context.Context) (map[calc.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM history GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[calc.Kind]int{}
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[calc.Kind(kind)] = n
	}
	return out, rows.Err()
}
