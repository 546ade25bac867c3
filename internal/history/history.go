// Package history keeps an archive of reminders that left the store, so a
// delivered or cancelled reminder still leaves a trace the operator can
// inspect. Archive writes are best-effort: the watcher logs failures and
// moves on.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/notexe/reminderd/internal/reminder"
)

// Final states recorded for a reminder.
const (
	StateDelivered = "delivered"
	StateCancelled = "cancelled"
)

// Entry is one archived reminder.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	DueAt      time.Time `json:"due_at"`
	FinalState string    `json:"final_state"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Archive provides SQLite-backed storage for the delivery history.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dbPath and ensures the
// history table exists.
func Open(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Archive{db: db}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id          TEXT NOT NULL,
			title       TEXT NOT NULL,
			message     TEXT NOT NULL DEFAULT '',
			due_at      TEXT NOT NULL,
			final_state TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record archives a reminder with its final state.
func (a *Archive) Record(r reminder.Reminder, state string) error {
	if state != StateDelivered && state != StateCancelled {
		return fmt.Errorf("unknown final state %q", state)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	_, err := a.db.Exec(`
		INSERT INTO history (id, title, message, due_at, final_state, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Title, r.Message, r.DueAt.UTC().Format(time.RFC3339), state, now)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A limit of zero or
// less returns everything.
func (a *Archive) List(limit int) ([]Entry, error) {
	var rows *sql.Rows
	var err error

	if limit > 0 {
		rows, err = a.db.Query(`
			SELECT id, title, message, due_at, final_state, recorded_at
			FROM history ORDER BY recorded_at DESC, rowid DESC LIMIT ?
		`, limit)
	} else {
		rows, err = a.db.Query(`
			SELECT id, title, message, due_at, final_state, recorded_at
			FROM history ORDER BY recorded_at DESC, rowid DESC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var dueAt, recordedAt string

		if err := rows.Scan(&e.ID, &e.Title, &e.Message, &dueAt, &e.FinalState, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		e.DueAt, _ = time.Parse(time.RFC3339, dueAt)
		e.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}
