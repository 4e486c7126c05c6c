package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrSessionNotFound is returned by operations keyed on a session id when no
// such session exists.
var ErrSessionNotFound = errors.New("session not found")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY, -- UUID
        title TEXT NOT NULL,
        pinned BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        sender TEXT NOT NULL CHECK (sender IN ('user', 'bot')),
        text TEXT NOT NULL,
        image TEXT,
        FOREIGN KEY (session_id) REFERENCES sessions (id)
    );

    CREATE INDEX IF NOT EXISTS idx_sessions_pinned_created
        ON sessions (pinned DESC, created_at DESC);
    `
	_, err := s.db.Exec(schema)
	return err
}

// CreateSession persists a new session with its ordered messages. Message
// text is stored exactly as given; encrypting it is the caller's concern.
func (s *SQLiteStore) CreateSession(title string, messages []Message) (*Session, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessionID := uuid.NewString()
	now := time.Now()

	_, err = tx.Exec("INSERT INTO sessions (id, title, pinned, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		sessionID, title, false, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO messages (session_id, position, sender, text, image) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		if _, err := stmt.Exec(sessionID, i, msg.Sender, msg.Text, msg.Image); err != nil {
			return nil, fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}

	return &Session{
		ID:        sessionID,
		Title:     title,
		Pinned:    false,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListSessions returns all saved sessions, pinned ones first and newest
// first within each group.
func (s *SQLiteStore) ListSessions() ([]SessionSummary, error) {
	rows, err := s.db.Query("SELECT id, title, pinned FROM sessions ORDER BY pinned DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var summary SessionSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Pinned); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, summary)
	}
	return sessions, rows.Err()
}

// GetSessionByID returns the full session with its ordered messages, or
// (nil, nil) when no session has the given id.
func (s *SQLiteStore) GetSessionByID(id string) (*Session, error) {
	var session Session
	err := s.db.QueryRow("SELECT id, title, pinned, created_at, updated_at FROM sessions WHERE id = ?", id).
		Scan(&session.ID, &session.Title, &session.Pinned, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := s.db.Query("SELECT sender, text, image FROM messages WHERE session_id = ? ORDER BY position ASC", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg Message
		var image sql.NullString
		if err := rows.Scan(&msg.Sender, &msg.Text, &image); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if image.Valid {
			msg.Image = image.String
		}
		session.Messages = append(session.Messages, msg)
	}
	return &session, rows.Err()
}

// UpdateSession applies a partial update (title and/or pinned) and returns
// the updated session without its messages, or (nil, nil) when the id is
// unknown.
func (s *SQLiteStore) UpdateSession(id string, title *string, pinned *bool) (*Session, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if title != nil {
		if _, err := tx.Exec("UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?", *title, now, id); err != nil {
			return nil, fmt.Errorf("failed to update session title: %w", err)
		}
	}
	if pinned != nil {
		if _, err := tx.Exec("UPDATE sessions SET pinned = ?, updated_at = ? WHERE id = ?", *pinned, now, id); err != nil {
			return nil, fmt.Errorf("failed to update session pinned flag: %w", err)
		}
	}

	var session Session
	err = tx.QueryRow("SELECT id, title, pinned, created_at, updated_at FROM sessions WHERE id = ?", id).
		Scan(&session.ID, &session.Title, &session.Pinned, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to read back session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session update: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session and its messages.
func (s *SQLiteStore) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}

	return tx.Commit()
}
