package store

import (
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/thinkwright/convo/internal/archive"
)

// maxResultText bounds the text of one search hit.
const maxResultText = 300

// Conversations returns every conversation, newest first.
func (s *Store) Conversations() ([]archive.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT conversation_id, title, group_name, created_at
		FROM conversations
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	convs := []archive.Conversation{}
	for rows.Next() {
		var c archive.Conversation
		var created int64
		if err := rows.Scan(&c.ID, &c.Title, &c.Group, &created); err != nil {
			return nil, err
		}
		c.Created = s.displayTime(created)
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// Thread returns the messages of one conversation in order. Unknown ids yield
// ErrNotFound.
func (s *Store) Thread(id string) (archive.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRow("SELECT 1 FROM conversations WHERE conversation_id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return archive.Thread{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return archive.Thread{}, err
	}

	rows, err := s.db.Query(`
		SELECT created_at, role, text
		FROM messages
		WHERE conversation_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return archive.Thread{}, fmt.Errorf("thread query: %w", err)
	}
	defer rows.Close()

	th := archive.Thread{ConversationID: id, Messages: []archive.Message{}}
	for rows.Next() {
		var m archive.Message
		var created int64
		if err := rows.Scan(&created, &m.Role, &m.Text); err != nil {
			return archive.Thread{}, err
		}
		m.Created = s.displayTime(created)
		th.Messages = append(th.Messages, m)
	}
	return th, rows.Err()
}

// Search executes a full-text + structured filter query and returns matching
// messages, best match first. An empty query yields no results.
func (s *Store) Search(query string, limit int) ([]archive.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []archive.SearchResult{}
	fs := ParseQuery(query)
	if fs.IsEmpty() {
		return results, nil
	}
	if limit <= 0 {
		limit = 100
	}

	where, params := fs.ToSQL(time.Now())

	var sqlStr string
	if fs.HasFTS() {
		sqlStr = fmt.Sprintf(`
			SELECT c.conversation_id, c.title, m.role, m.text, m.created_at
			FROM messages m
			JOIN messages_fts ON messages_fts.rowid = m.id
			JOIN conversations c ON c.conversation_id = m.conversation_id
			WHERE %s
			ORDER BY rank
			LIMIT ?
		`, where)
	} else {
		sqlStr = fmt.Sprintf(`
			SELECT c.conversation_id, c.title, m.role, m.text, m.created_at
			FROM messages m
			JOIN conversations c ON c.conversation_id = m.conversation_id
			WHERE %s
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT ?
		`, where)
	}
	params = append(params, limit)

	rows, err := s.db.Query(sqlStr, params...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r archive.SearchResult
		var created int64
		if err := rows.Scan(&r.ID, &r.Title, &r.Role, &r.Text, &created); err != nil {
			return nil, err
		}
		r.Text = truncate(r.Text, maxResultText)
		r.Created = s.displayTime(created)
		results = append(results, r)
	}
	return results, rows.Err()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	// Slice by rune count, not byte count
	i := 0
	for j := 0; j < n; j++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i] + "..."
}
