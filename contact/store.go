package contact

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

// Status is the delivery state of a stored message.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// pendingTimeout lets a token stuck in pending (for example after a crash)
// be claimed again.
const pendingTimeout = 2 * time.Minute

// Record is one stored contact message.
type Record struct {
	Token     string
	Message   Message
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store keeps contact messages in SQLite, keyed by form token.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the CLI read the archive while the server writes; the busy
	// timeout makes concurrent writers wait instead of failing.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing archive for reading. It never creates the
// file or its schema; a missing file is reported as fs.ErrNotExist.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS contact_messages (
    token TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    message TEXT NOT NULL,
    status TEXT NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS contact_messages_created ON contact_messages (created_at DESC);
`)
	return err
}

// Claim marks token as pending for m. It succeeds for a new token, a failed
// one, or one left pending for too long. Otherwise claimed is false and prior
// holds the existing status.
func (s *Store) Claim(ctx context.Context, token string, m Message) (claimed bool, prior Status, err error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO contact_messages (token, name, email, message, status, attempts, created_at, updated_at)
VALUES (?, ?, ?, ?, 'pending', 1, ?, ?)
ON CONFLICT(token) DO UPDATE SET
    name = excluded.name,
    email = excluded.email,
    message = excluded.message,
    status = 'pending',
    attempts = contact_messages.attempts + 1,
    updated_at = excluded.updated_at
WHERE contact_messages.status = 'failed'
   OR (contact_messages.status = 'pending' AND contact_messages.updated_at < ?)`,
		token, m.Name, m.Email, m.Message, now.UnixMilli(), now.UnixMilli(), now.Add(-pendingTimeout).UnixMilli())
	if err != nil {
		return false, "", fmt.Errorf("claim token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, "", fmt.Errorf("claim token: %w", err)
	}
	if n > 0 {
		return true, StatusPending, nil
	}
	rec, err := s.Get(ctx, token)
	if err != nil {
		return false, "", err
	}
	return false, rec.Status, nil
}

// Finish records the outcome of a forward attempt.
func (s *Store) Finish(ctx context.Context, token string, forwardErr error) error {
	status, lastErr := StatusSent, ""
	if forwardErr != nil {
		status, lastErr = StatusFailed, forwardErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contact_messages SET status = ?, last_error = ?, updated_at = ? WHERE token = ?`,
		string(status), lastErr, s.now().UnixMilli(), token)
	if err != nil {
		return fmt.Errorf("finish token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Get returns the record for token, or sql.ErrNoRows.
func (s *Store) Get(ctx context.Context, token string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT token, name, email, message, status, attempts, last_error, created_at, updated_at
FROM contact_messages WHERE token = ?`, token)
	return scanRecord(row)
}

// List returns the most recent messages, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT token, name, email, message, status, attempts, last_error, created_at, updated_at
FROM contact_messages ORDER BY created_at DESC, token LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var status string
	var created, updated int64
	err := sc.Scan(&rec.Token, &rec.Message.Name, &rec.Message.Email, &rec.Message.Message,
		&status, &rec.Attempts, &rec.LastError, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sql.ErrNoRows
		}
		return Record{}, err
	}
	rec.Status = Status(status)
	rec.CreatedAt = time.UnixMilli(created)
	rec.UpdatedAt = time.UnixMilli(updated)
	return rec, nil
}
