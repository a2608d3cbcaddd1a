package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/thinkwright/convo/internal/archive"
	"github.com/thinkwright/convo/internal/config"
	"github.com/thinkwright/convo/internal/metrics"
	"github.com/thinkwright/convo/internal/store"
)

const testExport = `[
 {"id": "c/1", "title": "Trip to Rome", "create_time": 1704103200, "current_node": "a",
  "mapping": {
   "u": {"message": {"author": {"role": "user"}, "create_time": 1704103260, "content": {"parts": ["hotels near the forum"]}}, "parent": null, "children": ["a"]},
   "a": {"message": {"author": {"role": "assistant"}, "create_time": 1704103320, "content": {"parts": ["Try these hotels"]}}, "parent": "u", "children": []}
  }},
 {"id": "c2", "title": "Budget", "create_time": 1704276000, "mapping": {}}
]`

// setupTestServer serves a store seeded with testExport and returns a client for it.
func setupTestServer(t *testing.T) (*archive.Client, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	exportPath := filepath.Join(dir, "conversations.json")
	if err := os.WriteFile(exportPath, []byte(testExport), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	g, err := store.NewGrouper([]config.GroupRule{{Name: "Travel", Pattern: "*trip*"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.ImportFile(exportPath, g); err != nil {
		t.Fatal(err)
	}

	srv := New(st, metrics.New(), zerolog.Nop(), Config{SearchLimit: 10})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return archive.NewClient(ts.URL, ts.Client()), ts
}

func TestAPI_Conversations(t *testing.T) {
	client, _ := setupTestServer(t)

	convs, err := client.Conversations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 || convs[0].ID != "c2" || convs[1].Group != "Travel" {
		t.Errorf("conversations = %+v", convs)
	}
}

func TestAPI_ThreadWithEscapedID(t *testing.T) {
	client, _ := setupTestServer(t)

	th, err := client.Thread(context.Background(), "c/1")
	if err != nil {
		t.Fatal(err)
	}
	if th.ConversationID != "c/1" || len(th.Messages) != 2 || th.Messages[1].Role != "assistant" {
		t.Errorf("thread = %+v", th)
	}
}

func TestAPI_ThreadNotFound(t *testing.T) {
	client, ts := setupTestServer(t)

	_, err := client.Thread(context.Background(), "missing")
	var rf *archive.RequestFailure
	if !errors.As(err, &rf) || rf.Kind != archive.KindStatus || rf.Status != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/conversations/missing/messages")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if !strings.Contains(body["error"], "not found") {
		t.Errorf("error body = %v", body)
	}
}

func TestAPI_Search(t *testing.T) {
	client, _ := setupTestServer(t)

	results, err := client.Search(context.Background(), "hotels forum")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c/1" || results[0].Role != "user" {
		t.Errorf("results = %+v", results)
	}

	results, err = client.Search(context.Background(), "nothing-matches-this")
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("empty search = %#v, %v", results, err)
	}
}

func TestAPI_SearchEmptyArrayOnWire(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/api/search?query=")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestAPI_StatisticsOrdered(t *testing.T) {
	client, _ := setupTestServer(t)

	st, err := client.Statistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(st) == 0 || st[0].Label != "Conversations" || st[0].Value != "2" {
		t.Errorf("statistics = %+v", st)
	}
}

func TestAPI_Activity(t *testing.T) {
	client, _ := setupTestServer(t)

	raw, err := client.Activity(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var points []archive.ActivityPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, p := range points {
		total += p.Count
	}
	if total != 2 {
		t.Errorf("activity = %s", raw)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	client, ts := setupTestServer(t)
	client.Search(context.Background(), "hotels")

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `convo_http_requests_total{route="GET /api/search",status="200"} 1`) {
		t.Errorf("metrics missing search request:\n%s", body)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	_, ts := setupTestServer(t)
	resp, err := http.Get(ts.URL + "/api/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("status = %d type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

type failingBackend struct{}

func (failingBackend) Conversations() ([]archive.Conversation, error) {
	return nil, errors.New("disk on fire")
}
func (failingBackend) Thread(string) (archive.Thread, error) {
	return archive.Thread{}, errors.New("x")
}
func (failingBackend) Search(string, int) ([]archive.SearchResult, error) {
	return nil, nil
}
func (failingBackend) Statistics() (archive.Statistics, error)    { return nil, nil }
func (failingBackend) Activity() ([]archive.ActivityPoint, error) { return nil, nil }

func TestBackendErrors(t *testing.T) {
	ts := httptest.NewServer(New(failingBackend{}, metrics.New(), zerolog.Nop(), Config{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/conversations")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError || body["error"] != "Internal Server Error" {
		t.Errorf("status = %d body = %v", resp.StatusCode, body)
	}

	// nil slices from the backend still encode as JSON arrays and objects
	for path, want := range map[string]string{"/api/search?query=x": "[]", "/api/statistics": "{}", "/api/activity": "[]"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if strings.TrimSpace(string(b)) != want {
			t.Errorf("%s = %q, want %s", path, b, want)
		}
	}
}
