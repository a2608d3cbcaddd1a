// Package store indexes chat exports in SQLite and answers the queries behind
// the archive API.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a conversation id is not in the index.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	loc *time.Location // zone for display timestamps and activity days
}

func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "index.db")
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}

	s := &Store{db: db, loc: time.Local}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version == 0 {
		return s.createSchema()
	}
	return nil
}

func (s *Store) createSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS files (
    id          INTEGER PRIMARY KEY,
    path        TEXT    UNIQUE NOT NULL,
    mtime       INTEGER NOT NULL,
    size        INTEGER NOT NULL,
    imported_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
    id              INTEGER PRIMARY KEY,
    conversation_id TEXT    UNIQUE NOT NULL,
    file_id         INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    title           TEXT    DEFAULT '',
    group_name      TEXT    DEFAULT '',
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL,
    message_count   INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at);
CREATE INDEX IF NOT EXISTS idx_conversations_group ON conversations(group_name);

CREATE TABLE IF NOT EXISTS messages (
    id              INTEGER PRIMARY KEY,
    conversation_id TEXT    NOT NULL REFERENCES conversations(conversation_id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    role            TEXT    NOT NULL,
    created_at      INTEGER NOT NULL,
    text            TEXT    DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, position);
CREATE INDEX IF NOT EXISTS idx_messages_role ON messages(role);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages, content_rowid=id,
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES ('delete', old.id, old.text);
END;

PRAGMA user_version = 1;
`
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops all data. Used by import --reset.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range []string{"messages", "conversations", "files"} {
		if _, err := s.db.Exec("DELETE FROM " + t); err != nil {
			return err
		}
	}
	// Rebuild FTS index
	_, err := s.db.Exec("INSERT INTO messages_fts(messages_fts) VALUES('rebuild')")
	return err
}

// ConversationCount returns the number of indexed conversations.
func (s *Store) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&count)
	return count
}

// MessageCount returns the total number of indexed messages.
func (s *Store) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	return count
}

// LastImportedAt returns the most recent import time, or the zero time if
// nothing was imported.
func (s *Store) LastImportedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastImportedAt()
}

func (s *Store) lastImportedAt() time.Time {
	var ts int64
	s.db.QueryRow("SELECT COALESCE(MAX(imported_at), 0) FROM files").Scan(&ts)
	if ts == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ts)
}

func (s *Store) displayTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).In(s.loc).Format("2006-01-02 15:04")
}
