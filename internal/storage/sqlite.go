package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dtek-outage-monitor/internal/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS notification_state (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	message_id INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT ''
)`

// sqliteStorage keeps the record as the single row id = 1.
type sqliteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create dir: %w", models.ErrStore, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", models.ErrStore, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: set pragma %s: %w", models.ErrStore, pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", models.ErrStore, err)
	}

	return &sqliteStorage{db: db}, nil
}

func (s *sqliteStorage) Load() (*models.NotificationState, error) {
	var (
		state     models.NotificationState
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRow(
		`SELECT message_id, created_at, updated_at FROM notification_state WHERE id = 1`,
	).Scan(&state.MessageID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", models.ErrStore, err)
	}

	if state.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("%w: created_at: %w", models.ErrStore, err)
	}
	if state.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("%w: updated_at: %w", models.ErrStore, err)
	}
	if state.MessageID == 0 {
		return nil, nil
	}
	return &state, nil
}

func (s *sqliteStorage) Save(state models.NotificationState) error {
	_, err := s.db.Exec(`
		INSERT INTO notification_state (id, message_id, created_at, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			message_id = excluded.message_id,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		state.MessageID, formatTime(state.CreatedAt), formatTime(state.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("%w: save: %w", models.ErrStore, err)
	}
	return nil
}

func (s *sqliteStorage) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM notification_state`); err != nil {
		return fmt.Errorf("%w: clear: %w", models.ErrStore, err)
	}
	return nil
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}
