package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/ticketai/pkg/ticketai/entities"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and migrates
// the schema.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %v: %w", err, internalerr.ErrStoreUnavailable)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %v: %w", err, internalerr.ErrStoreUnavailable)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// migrate creates tables if they don't exist
func migrate(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS tickets (
	id TEXT PRIMARY KEY,
	prefix TEXT NOT NULL,
	seq INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	cleaned_description TEXT NOT NULL,
	category TEXT NOT NULL,
	category_confidence REAL NOT NULL,
	priority TEXT NOT NULL,
	priority_confidence REAL NOT NULL,
	avg_confidence REAL NOT NULL,
	entities TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_category ON tickets(category);
CREATE INDEX IF NOT EXISTS idx_tickets_priority ON tickets(priority);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
CREATE INDEX IF NOT EXISTS idx_tickets_prefix_seq ON tickets(prefix, seq);
CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Save inserts or replaces a ticket
func (s *sqliteStore) Save(ctx context.Context, t ticket.Ticket) error {
	prefix, seq, ok := store.SplitID(t.ID)
	if !ok {
		return fmt.Errorf("ticket id %q: %w", t.ID, internalerr.ErrInvalidInput)
	}
	ents, err := json.Marshal(t.Entities)
	if err != nil {
		return fmt.Errorf("encode entities: %w", err)
	}

	const stmt = `
INSERT INTO tickets (
	id, prefix, seq, title, description, cleaned_description,
	category, category_confidence, priority, priority_confidence, avg_confidence,
	entities, status, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title=excluded.title,
	description=excluded.description,
	cleaned_description=excluded.cleaned_description,
	category=excluded.category,
	category_confidence=excluded.category_confidence,
	priority=excluded.priority,
	priority_confidence=excluded.priority_confidence,
	avg_confidence=excluded.avg_confidence,
	entities=excluded.entities,
	status=excluded.status,
	updated_at=excluded.updated_at;
`
	_, err = s.db.ExecContext(ctx, stmt,
		t.ID, prefix, seq, t.Title, t.Description, t.CleanedDescription,
		t.Category, t.CategoryConfidence, t.Priority, t.PriorityConfidence, t.AvgConfidence,
		string(ents), t.Status,
		formatTime(t.CreatedAt.Time()), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save ticket %s: %w", t.ID, err)
	}
	return nil
}

const selectColumns = `
SELECT id, title, description, cleaned_description,
	category, category_confidence, priority, priority_confidence, avg_confidence,
	entities, status, created_at
FROM tickets`

// Get returns a ticket by ID
func (s *sqliteStore) Get(ctx context.Context, id string) (ticket.Ticket, bool, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ticket.Ticket{}, false, nil
	}
	if err != nil {
		return ticket.Ticket{}, false, err
	}
	return t, true, nil
}

// List returns tickets matching the filter, newest first
func (s *sqliteStore) List(ctx context.Context, f store.Filter) ([]ticket.Ticket, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Category != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, f.Category)
	}
	if f.Priority != "" {
		where = append(where, "priority = ? COLLATE NOCASE")
		args = append(args, f.Priority)
	}
	if f.Status != "" {
		where = append(where, "status = ? COLLATE NOCASE")
		args = append(args, f.Status)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC LIMIT ?"
	args = append(args, f.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	out := []ticket.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus changes a ticket's status
func (s *sqliteStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET status = ?, updated_at = ? WHERE id = ?",
		status, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ticket %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

// LastSequence returns the highest sequence stored under prefix
func (s *sqliteStore) LastSequence(ctx context.Context, prefix string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM tickets WHERE prefix = ?", prefix).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last sequence: %w", err)
	}
	return seq.Int64, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row scanner) (ticket.Ticket, error) {
	var (
		t         ticket.Ticket
		ents      string
		createdAt string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.CleanedDescription,
		&t.Category, &t.CategoryConfidence, &t.Priority, &t.PriorityConfidence, &t.AvgConfidence,
		&ents, &t.Status, &createdAt,
	)
	if err != nil {
		return ticket.Ticket{}, err
	}

	t.Entities = entities.NewBundle()
	if err := json.Unmarshal([]byte(ents), &t.Entities); err != nil {
		return ticket.Ticket{}, fmt.Errorf("decode entities of %s: %w", t.ID, err)
	}
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("decode created_at of %s: %w", t.ID, err)
	}
	t.CreatedAt = ticket.Timestamp(ts.Local())
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
