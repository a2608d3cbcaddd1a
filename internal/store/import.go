package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thinkwright/convo/internal/export"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Conversations int
	Messages      int
}

// maxIndexedText bounds the text stored per message.
const maxIndexedText = 50000

// ImportFile replaces everything previously imported from path with its
// current contents.
func (s *Store) ImportFile(path string, g *Grouper) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importFile(path, g)
}

// ImportChanged re-imports path only if its mtime or size differ from the last
// import. Reports whether an import happened.
func (s *Store) ImportChanged(path string, g *Grouper) (bool, ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, ImportResult{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return false, ImportResult{}, err
	}

	var existingMtime, existingSize int64
	err = s.db.QueryRow(
		"SELECT mtime, size FROM files WHERE path = ?", abs,
	).Scan(&existingMtime, &existingSize)
	if err == nil && existingMtime == info.ModTime().UnixMilli() && existingSize == info.Size() {
		return false, ImportResult{}, nil // unchanged
	}

	res, err := s.importFile(abs, g)
	if err != nil {
		return false, ImportResult{}, err
	}
	return true, res, nil
}

func (s *Store) importFile(path string, g *Grouper) (ImportResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ImportResult{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ImportResult{}, err
	}

	convs, err := export.Load(abs)
	if err != nil {
		return ImportResult{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return ImportResult{}, err
	}
	defer tx.Rollback()

	// Clean up old data for this file
	var oldFileID int64
	if err := tx.QueryRow("SELECT id FROM files WHERE path = ?", abs).Scan(&oldFileID); err == nil {
		if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id IN
			(SELECT conversation_id FROM conversations WHERE file_id = ?)`, oldFileID); err != nil {
			return ImportResult{}, err
		}
		if _, err := tx.Exec("DELETE FROM conversations WHERE file_id = ?", oldFileID); err != nil {
			return ImportResult{}, err
		}
		if _, err := tx.Exec("DELETE FROM files WHERE id = ?", oldFileID); err != nil {
			return ImportResult{}, err
		}
	}

	res, err := tx.Exec(
		"INSERT INTO files (path, mtime, size, imported_at) VALUES (?, ?, ?, ?)",
		abs, info.ModTime().UnixMilli(), info.Size(), time.Now().UnixMilli(),
	)
	if err != nil {
		return ImportResult{}, err
	}
	fileID, _ := res.LastInsertId()

	convStmt, err := tx.Prepare(`
		INSERT INTO conversations (conversation_id, file_id, title, group_name, created_at, updated_at, message_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return ImportResult{}, err
	}
	defer convStmt.Close()

	msgStmt, err := tx.Prepare(`
		INSERT INTO messages (conversation_id, position, role, created_at, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return ImportResult{}, err
	}
	defer msgStmt.Close()

	var result ImportResult
	for _, c := range convs {
		// A conversation id may already come from another export file.
		if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", c.ID); err != nil {
			return ImportResult{}, err
		}
		if _, err := tx.Exec("DELETE FROM conversations WHERE conversation_id = ?", c.ID); err != nil {
			return ImportResult{}, err
		}

		if _, err := convStmt.Exec(
			c.ID, fileID, c.Title, g.Match(c.Title),
			unixOrZero(c.Created), unixOrZero(c.Updated), len(c.Messages),
		); err != nil {
			return ImportResult{}, fmt.Errorf("insert conversation %s: %w", c.ID, err)
		}
		for i, m := range c.Messages {
			text := m.Text
			if len(text) > maxIndexedText {
				text = truncate(text, maxIndexedText)
			}
			if _, err := msgStmt.Exec(c.ID, i, m.Role, unixOrZero(m.Created), text); err != nil {
				return ImportResult{}, fmt.Errorf("insert message %s/%d: %w", c.ID, i, err)
			}
		}
		result.Conversations++
		result.Messages += len(c.Messages)
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
