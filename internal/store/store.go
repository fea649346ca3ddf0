// Package store handles SQLite persistence of the reference-text library.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typemaster/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a text ID does not exist.
var ErrNotFound = errors.New("text not found")

// Store wraps SQLite access for reference texts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS texts (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			builtin INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_texts_builtin_title ON texts(title) WHERE builtin = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedBuiltin inserts built-in texts that are not yet present.
func (s *Store) SeedBuiltin(ctx context.Context, texts []model.Text) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO texts (title, body, builtin, created_at) VALUES (?, ?, 1, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, t := range texts {
		if _, err = stmt.ExecContext(ctx, t.Title, t.Body, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddText stores a user-supplied text and returns its ID.
func (s *Store) AddText(ctx context.Context, title, body string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO texts (title, body, builtin, created_at) VALUES (?, ?, 0, ?)`,
		title, body, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetText returns the text with the given ID.
func (s *Store) GetText(ctx context.Context, id int64) (model.Text, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, body, builtin, created_at FROM texts WHERE id = ?`, id)
	t, err := scanText(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Text{}, ErrNotFound
	}
	return t, err
}

// ListTexts returns all texts ordered by ID.
func (s *Store) ListTexts(ctx context.Context) ([]model.Text, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, builtin, created_at FROM texts ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Text
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteText removes a user-supplied text. Built-in texts cannot be removed.
func (s *Store) DeleteText(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM texts WHERE id = ? AND builtin = 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanText(row scanner) (model.Text, error) {
	var t model.Text
	var builtin int
	var createdAt string
	if err := row.Scan(&t.ID, &t.Title, &t.Body, &builtin, &createdAt); err != nil {
		return model.Text{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Text{}, err
	}
	t.Builtin = builtin == 1
	t.CreatedAt = parsed
	return t, nil
}
