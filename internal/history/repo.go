package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notemover/internal/mover"
)

// Record is one row of the moves table.
type Record struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Destination string    `json:"destination,omitempty"`
	NewPath     string    `json:"new_path,omitempty"`
	Outcome     string    `json:"outcome"`
	Companion   string    `json:"companion"`
	Subfolder   bool      `json:"subfolder_created"`
	Trigger     string    `json:"trigger"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Verify *DB satisfies mover.Recorder at compile time.
var _ mover.Recorder = (*DB)(nil)

// RecordMove stores the result of a move attempt.
func (db *DB) RecordMove(ctx context.Context, trigger mover.Trigger, res mover.Result) error {
	msg := ""
	if res.Err != nil {
		msg = res.Err.Error()
	}
	return db.Append(ctx, Record{
		Path:        res.From,
		Destination: res.Destination,
		NewPath:     res.To,
		Outcome:     res.Outcome.String(),
		Companion:   res.Companion.String(),
		Subfolder:   res.SubfolderCreated,
		Trigger:     string(trigger),
		Message:     msg,
	})
}

// Append inserts r, filling ID and CreatedAt when empty.
func (db *DB) Append(ctx context.Context, r Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO moves (id, path, destination, new_path, outcome, companion, subfolder, trigger_mode, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Path, r.Destination, r.NewPath, r.Outcome, r.Companion, r.Subfolder, r.Trigger, r.Message, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.query(ctx, `
		SELECT id, path, destination, new_path, outcome, companion, subfolder, trigger_mode, message, created_at
		FROM moves
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
}

// ForPath returns records where path was either the source or the target,
// newest first.
func (db *DB) ForPath(ctx context.Context, path string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.query(ctx, `
		SELECT id, path, destination, new_path, outcome, companion, subfolder, trigger_mode, message, created_at
		FROM moves
		WHERE path = ? OR new_path = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, path, path, limit)
}

func (db *DB) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Path, &r.Destination, &r.NewPath, &r.Outcome,
			&r.Companion, &r.Subfolder, &r.Trigger, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
