package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5000

// Store wraps the SQLite handle behind the local transcript cache: rooms the
// user visited and the chat messages seen there, so a rejoin shows history
// before the server snapshot arrives.
type Store struct {
	db *sql.DB
}

// Room is one visited room.
type Room struct {
	ID          string
	Title       string
	LastVisitAt time.Time
}

// Message is one cached chat line.
type Message struct {
	RoomID         string
	SenderID       string
	SenderUsername string
	IsHost         bool
	Content        string
	CreatedAt      time.Time
}

// NewStore initializes the SQLite database at the provided path. Call Close
// when done.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "cowatch.db"
	}
	dsn := buildDSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying DB connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildDSN(path string) string {
	switch {
	case strings.HasPrefix(path, "sqlite://"):
		path = path[len("sqlite://"):]
	case strings.HasPrefix(path, "file:"), strings.HasPrefix(path, ":memory:"):
		// already in a form sqlite understands
	default:
		path = "file:" + path
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout=%d&_pragma=foreign_keys=ON", path, separator, defaultBusyTimeout)
}

// Migrate runs the schema creation statements.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			last_visit_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			room_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			sender_username TEXT NOT NULL,
			is_host INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (room_id, sender_id, created_at, content),
			FOREIGN KEY(room_id) REFERENCES rooms(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_created
			ON messages(room_id, created_at DESC);`,
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// RecordVisit upserts the room row and stamps the visit time.
func (s *Store) RecordVisit(ctx context.Context, roomID, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, title, last_visit_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, last_visit_at = CURRENT_TIMESTAMP`,
		roomID, title)
	return err
}

// SaveMessage caches one chat message. Replays of the same message are
// swallowed by the uniqueness constraint, which keeps snapshot re-application
// idempotent.
func (s *Store) SaveMessage(ctx context.Context, m Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO messages (room_id, sender_id, sender_username, is_host, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.RoomID, m.SenderID, m.SenderUsername, boolToInt(m.IsHost), m.Content, m.CreatedAt.UTC())
	return err
}

// RecentMessages returns up to limit cached messages for the room, newest
// first, matching the render order of the live log.
func (s *Store) RecentMessages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, sender_id, sender_username, is_host, content, created_at
		 FROM messages WHERE room_id = ? ORDER BY created_at DESC LIMIT ?`,
		roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var isHost int
		if err := rows.Scan(&m.RoomID, &m.SenderID, &m.SenderUsername, &isHost, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.IsHost = isHost != 0
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// RecentRooms lists visited rooms, most recent first.
func (s *Store) RecentRooms(ctx context.Context, limit int) ([]Room, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, last_visit_at FROM rooms ORDER BY last_visit_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Title, &r.LastVisitAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
