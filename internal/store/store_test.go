package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thinkwright/convo/internal/config"
)

// openTestStore creates a real SQLite store in a temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	s.loc = time.UTC
	t.Cleanup(func() { s.Close() })
	return s
}

// 2024-01-01 10:00 UTC and friends.
const testExport = `[
 {"id": "c-rome", "title": "Trip to Rome", "create_time": 1704103200, "update_time": 1704106800, "current_node": "a1",
  "mapping": {
   "u1": {"message": {"id": "m1", "author": {"role": "user"}, "create_time": 1704103260, "content": {"parts": ["Plan a trip to Rome with hotels"]}}, "parent": null, "children": ["a1"]},
   "a1": {"message": {"id": "m2", "author": {"role": "assistant"}, "create_time": 1704103320, "content": {"parts": ["Day one: the Colosseum. Book hotels early."]}}, "parent": "u1", "children": []}
  }},
 {"id": "c-budget", "title": "Monthly budget", "create_time": 1704276000, "update_time": 1704276000, "current_node": "b3",
  "mapping": {
   "b1": {"message": {"author": {"role": "user"}, "create_time": 1704276060, "content": {"parts": ["Draft a budget spreadsheet"]}}, "parent": null, "children": ["b2"]},
   "b2": {"message": {"author": {"role": "assistant"}, "create_time": 1704276120, "content": {"parts": ["Columns: rent, food, travel"]}}, "parent": "b1", "children": ["b3"]},
   "b3": {"message": {"author": {"role": "user"}, "create_time": 1704276180, "content": {"parts": ["thanks"]}}, "parent": "b2", "children": []}
  }},
 {"id": "c-untitled", "title": "", "create_time": 1704189600, "mapping": {}}
]`

// writeTestExport writes content as conversations.json and returns its path.
func writeTestExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testGrouper(t *testing.T) *Grouper {
	t.Helper()
	g, err := NewGrouper([]config.GroupRule{
		{Name: "Travel", Pattern: "*trip*"},
		{Name: "Finance", Pattern: "*budget*"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// seedTestData imports testExport and returns the export path.
func seedTestData(t *testing.T, s *Store) string {
	t.Helper()
	path := writeTestExport(t, testExport)
	if _, err := s.ImportFile(path, testGrouper(t)); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"files", "conversations", "messages", "messages_fts"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Errorf("user_version = %d, want 1", version)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	seedTestData(t, s)
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if n := s.ConversationCount(); n != 3 {
		t.Errorf("conversations after reopen = %d, want 3", n)
	}
}

func TestImportFile(t *testing.T) {
	s := openTestStore(t)
	res, err := s.ImportFile(writeTestExport(t, testExport), testGrouper(t))
	if err != nil {
		t.Fatal(err)
	}
	if res.Conversations != 3 || res.Messages != 5 {
		t.Errorf("result = %+v", res)
	}
	if s.MessageCount() != 5 {
		t.Errorf("message count = %d", s.MessageCount())
	}
	if s.LastImportedAt().IsZero() {
		t.Error("import time not recorded")
	}
}

func TestImportFile_ReplacesPreviousContent(t *testing.T) {
	s := openTestStore(t)
	path := seedTestData(t, s)

	replacement := `[{"id": "c-new", "title": "Fresh start", "create_time": 1704400000, "mapping": {
	  "n": {"message": {"author": {"role": "user"}, "content": {"parts": ["only message"]}}, "parent": null, "children": []}
	}}]`
	if err := os.WriteFile(path, []byte(replacement), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ImportFile(path, nil); err != nil {
		t.Fatal(err)
	}

	convs, _ := s.Conversations()
	if len(convs) != 1 || convs[0].ID != "c-new" {
		t.Errorf("conversations = %+v", convs)
	}
	results, _ := s.Search("rome", 10)
	if len(results) != 0 {
		t.Errorf("old messages still searchable: %+v", results)
	}
}

func TestImportFile_BadExportKeepsIndex(t *testing.T) {
	s := openTestStore(t)
	path := seedTestData(t, s)
	os.WriteFile(path, []byte("{not an array"), 0o644)

	if _, err := s.ImportFile(path, nil); err == nil {
		t.Fatal("expected parse error")
	}
	if n := s.ConversationCount(); n != 3 {
		t.Errorf("failed import changed the index: %d conversations", n)
	}
}

func TestImportChanged(t *testing.T) {
	s := openTestStore(t)
	path := writeTestExport(t, testExport)

	changed, _, err := s.ImportChanged(path, nil)
	if err != nil || !changed {
		t.Fatalf("first import: changed=%v err=%v", changed, err)
	}
	changed, _, err = s.ImportChanged(path, nil)
	if err != nil || changed {
		t.Errorf("unchanged file reimported: changed=%v err=%v", changed, err)
	}

	future := time.Now().Add(time.Hour)
	os.Chtimes(path, future, future)
	changed, res, err := s.ImportChanged(path, nil)
	if err != nil || !changed || res.Conversations != 3 {
		t.Errorf("touched file: changed=%v res=%+v err=%v", changed, res, err)
	}

	if _, _, err := s.ImportChanged(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if s.ConversationCount() != 0 || s.MessageCount() != 0 {
		t.Error("reset left data behind")
	}
	results, err := s.Search("rome", 10)
	if err != nil || len(results) != 0 {
		t.Errorf("search after reset = %v, %v", results, err)
	}
}

func TestConversations_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)

	convs, err := s.Conversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 3 {
		t.Fatalf("got %d conversations", len(convs))
	}
	wantIDs := []string{"c-budget", "c-untitled", "c-rome"}
	for i, id := range wantIDs {
		if convs[i].ID != id {
			t.Errorf("convs[%d] = %s, want %s", i, convs[i].ID, id)
		}
	}
	if convs[0].Group != "Finance" || convs[1].Group != "" || convs[2].Group != "Travel" {
		t.Errorf("groups = %q %q %q", convs[0].Group, convs[1].Group, convs[2].Group)
	}
	if convs[2].Created != "2024-01-01 10:00" {
		t.Errorf("created = %q", convs[2].Created)
	}
}

func TestConversations_EmptyIndex(t *testing.T) {
	s := openTestStore(t)
	convs, err := s.Conversations()
	if err != nil {
		t.Fatal(err)
	}
	if convs == nil || len(convs) != 0 {
		t.Errorf("empty index should give an empty non-nil list, got %#v", convs)
	}
}

func TestImportFile_ExcludesBranchPastCurrentNode(t *testing.T) {
	s := openTestStore(t)
	data := strings.Replace(testExport, `"current_node": "b3"`, `"current_node": "b2"`, 1)
	res, err := s.ImportFile(writeTestExport(t, data), testGrouper(t))
	if err != nil {
		t.Fatal(err)
	}
	if res.Messages != 4 {
		t.Errorf("messages = %d, want 4", res.Messages)
	}

	th, err := s.Thread("c-budget")
	if err != nil {
		t.Fatal(err)
	}
	if len(th.Messages) != 2 || th.Messages[1].Text != "Columns: rent, food, travel" {
		t.Errorf("thread = %+v", th.Messages)
	}
	hits, err := s.Search("thanks", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("message past current_node is searchable: %+v", hits)
	}
}

func TestThread(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)

	th, err := s.Thread("c-budget")
	if err != nil {
		t.Fatal(err)
	}
	if th.ConversationID != "c-budget" || len(th.Messages) != 3 {
		t.Fatalf("thread = %+v", th)
	}
	if th.Messages[0].Role != "user" || th.Messages[2].Text != "thanks" {
		t.Errorf("messages out of order: %+v", th.Messages)
	}
	if th.Messages[1].Created != "2024-01-03 10:02" {
		t.Errorf("created = %q", th.Messages[1].Created)
	}

	empty, err := s.Thread("c-untitled")
	if err != nil || empty.Messages == nil || len(empty.Messages) != 0 {
		t.Errorf("conversation without messages = %+v, %v", empty, err)
	}

	if _, err := s.Thread("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}
