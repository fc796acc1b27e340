// Package ledger records which template rows were accepted by the server so
// that re-running a submission skips them.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one accepted submission.
type Entry struct {
	FormUID     string
	Fingerprint string
	InstanceID  string
	Row         int
	Attachment  string
	SubmittedAt time.Time
}

// Store wraps the SQLite ledger.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; workers serialize through the pool
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			form_uid TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			instance_id TEXT NOT NULL,
			row_number INTEGER NOT NULL,
			attachment TEXT NOT NULL DEFAULT '',
			submitted_at DATETIME NOT NULL,
			PRIMARY KEY (form_uid, fingerprint)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_uid, submitted_at)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Seen reports whether a row with this fingerprint was already accepted.
func (s *Store) Seen(ctx context.Context, formUID, fingerprint string) (bool, error) {
	var one int

	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM submissions WHERE form_uid = ? AND fingerprint = ?`,
		formUID, fingerprint).Scan(&one)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query ledger: %w", err)
	default:
		return true, nil
	}
}

// Record stores e, replacing an earlier entry for the same row content.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO submissions (form_uid, fingerprint, instance_id, row_number, attachment, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(form_uid, fingerprint) DO UPDATE SET
			instance_id = excluded.instance_id,
			row_number = excluded.row_number,
			attachment = excluded.attachment,
			submitted_at = excluded.submitted_at`,
		e.FormUID, e.Fingerprint, e.InstanceID, e.Row, e.Attachment, e.SubmittedAt.UTC())
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}

	return nil
}

// List returns the entries of a form, oldest first.
func (s *Store) List(ctx context.Context, formUID string) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT form_uid, fingerprint, instance_id, row_number, attachment, submitted_at
		FROM submissions WHERE form_uid = ? ORDER BY submitted_at, row_number`, formUID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []Entry

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.FormUID, &e.Fingerprint, &e.InstanceID, &e.Row, &e.Attachment, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}

		out = append(out, e)
	}

	return out, rows.Err()
}
