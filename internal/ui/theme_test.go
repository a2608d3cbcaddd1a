package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestRenderPanelGeometry(t *testing.T) {
	for _, focused := range []bool{false, true} {
		out := RenderPanel("TITLE", "one\ntwo\na line that is far too long for the panel", 20, 4, focused)
		lines := strings.Split(out, "\n")
		if len(lines) != 6 {
			t.Fatalf("focused=%v: %d lines, want 6", focused, len(lines))
		}
		for i, l := range lines {
			if w := visibleLen(l); w != 20 {
				t.Errorf("focused=%v line %d width %d, want 20: %q", focused, i, w, ansi.Strip(l))
			}
		}
		if !strings.Contains(ansi.Strip(lines[0]), "TITLE") {
			t.Errorf("title missing from top border: %q", ansi.Strip(lines[0]))
		}
		corner := "┏"
		if focused {
			corner = "╔"
		}
		if !strings.HasPrefix(ansi.Strip(lines[0]), corner) {
			t.Errorf("focused=%v top border = %q", focused, ansi.Strip(lines[0]))
		}
	}
}

func TestRenderScrollbar(t *testing.T) {
	track := RenderScrollbar(5, 3, 0)
	for i, c := range track {
		if c != " " {
			t.Errorf("fits on screen: cell %d = %q, want blank", i, c)
		}
	}

	track = RenderScrollbar(5, 10, 0)
	if len(track) != 5 {
		t.Fatalf("len = %d", len(track))
	}
	if ansi.Strip(track[0]) != "┃" || ansi.Strip(track[4]) != "╎" {
		t.Errorf("top of content: %q ... %q", ansi.Strip(track[0]), ansi.Strip(track[4]))
	}

	track = RenderScrollbar(5, 10, 5)
	if ansi.Strip(track[4]) != "┃" {
		t.Errorf("bottom of content: last cell %q", ansi.Strip(track[4]))
	}

	if RenderScrollbar(0, 10, 0) != nil {
		t.Error("zero height should have no cells")
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncateToWidth("hello world", 5); got != "hello" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncateToWidth("hello", 0); got != "" {
		t.Errorf("truncate to 0 = %q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("pad = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("pad never truncates, got %q", got)
	}
	if got := visibleLen("\x1b[31m日本\x1b[0m"); got != 4 {
		t.Errorf("visibleLen = %d, want 4", got)
	}
}

func TestRoleStyleFallback(t *testing.T) {
	if roleStyle("User").GetForeground() != UserMsgStyle.GetForeground() {
		t.Error("role match should be case-insensitive")
	}
	if roleStyle("narrator").GetForeground() != SystemMsgStyle.GetForeground() {
		t.Error("unknown roles use the system style")
	}
}
