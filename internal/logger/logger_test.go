package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Debug().Msg("hidden")
	log.Error().Str("op", "search").Err(errors.New("boom")).Msg("request failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["op"] != "search" || rec["error"] != "boom" || rec["service"] != "convo" || rec["level"] != "error" {
		t.Errorf("record = %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Error("record should carry a timestamp")
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Pretty: true, Output: &buf})
	log.Info().Msg("listening")
	if !strings.Contains(buf.String(), "listening") || strings.HasPrefix(buf.String(), "{") {
		t.Errorf("pretty output = %q", buf.String())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "convo.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log := New(Config{Output: f})
	log.Info().Msg("first")
	f.Close()

	f, err = OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log = New(Config{Output: f})
	log.Info().Msg("second")
	f.Close()

	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("expected appended lines, got %d: %q", n, data)
	}
}
