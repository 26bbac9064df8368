package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/gesturify/internal/gesture"
)

// CommandEntry records the outcome of one gesture command. Status holds one
// of the transport.Status values.
type CommandEntry struct {
	ID        string        `json:"id"`
	Gesture   gesture.Label `json:"gesture"`
	Status    string        `json:"status"`
	Command   string        `json:"command,omitempty"`
	Message   string        `json:"message,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// CommandLogRepository stores and lists command outcomes.
type CommandLogRepository struct {
	db *sql.DB
}

// CommandLog returns the command log repository for this store.
func (s *Store) CommandLog() *CommandLogRepository {
	return &CommandLogRepository{db: s.db}
}

// Append records an entry. An empty ID is filled with a new UUID.
func (r *CommandLogRepository) Append(e *CommandEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO command_log (id, gesture, status, command, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Gesture), e.Status, e.Command, e.Message, e.CreatedAt,
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (r *CommandLogRepository) Recent(limit int) ([]CommandEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, status, command, message, created_at
		 FROM command_log
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CommandEntry
	for rows.Next() {
		var e CommandEntry
		var label string
		if err := rows.Scan(&e.ID, &label, &e.Status, &e.Command, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Gesture = gesture.Label(label)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
