package browse

import (
	"strings"
	"testing"

	"github.com/thinkwright/convo/internal/archive"
)

func ids(convs []archive.Conversation) string {
	var parts []string
	for _, c := range convs {
		parts = append(parts, c.ID)
	}
	return strings.Join(parts, ",")
}

func sample() []archive.Conversation {
	return []archive.Conversation{
		conv("1", "Trip to Rome", "Travel"),
		conv("2", "Budget review", "Finance"),
		conv("3", "ROME hotels", "Travel"),
		conv("4", "", "Travel"),
		conv("5", "rome notes", ""),
		conv("6", "travel budget", "travel"),
	}
}

func TestApply_NoFilters(t *testing.T) {
	if got := ids(Apply(sample(), "", "")); got != "1,2,3,4,5,6" {
		t.Errorf("no filters = %s", got)
	}
}

func TestApply_GroupExactCaseSensitive(t *testing.T) {
	if got := ids(Apply(sample(), "Travel", "")); got != "1,3,4" {
		t.Errorf("group Travel = %s", got)
	}
	if got := ids(Apply(sample(), "travel", "")); got != "6" {
		t.Errorf("group travel = %s", got)
	}
}

func TestApply_TextCaseInsensitive(t *testing.T) {
	if got := ids(Apply(sample(), "", "rome")); got != "1,3,5" {
		t.Errorf("text rome = %s", got)
	}
}

func TestApply_UntitledNeverMatchesText(t *testing.T) {
	for _, c := range Apply(sample(), "", "r") {
		if c.Title == "" {
			t.Errorf("untitled conversation %s matched text filter", c.ID)
		}
	}
}

func TestApply_GroupAndText(t *testing.T) {
	if got := ids(Apply(sample(), "Travel", "rome")); got != "1,3" {
		t.Errorf("Travel+rome = %s", got)
	}
}

func TestApply_NoGroupExcludedBySpecificGroup(t *testing.T) {
	for _, g := range []string{"Travel", "Finance", "travel"} {
		for _, c := range Apply(sample(), g, "") {
			if c.Group == "" {
				t.Errorf("group %q included ungrouped conversation %s", g, c.ID)
			}
		}
	}
}

func TestApply_MatchesPredicateForAllInputs(t *testing.T) {
	convs := sample()
	groups := []string{"", "Travel", "Finance", "travel", "Missing"}
	texts := []string{"", "rome", "BUDGET", "x", "o"}
	for _, g := range groups {
		for _, text := range texts {
			got := Apply(convs, g, text)
			var want []archive.Conversation
			for _, c := range convs {
				groupOK := g == "" || c.Group == g
				textOK := text == "" || (c.Title != "" && strings.Contains(strings.ToLower(c.Title), strings.ToLower(text)))
				if groupOK && textOK {
					want = append(want, c)
				}
			}
			if ids(got) != ids(want) {
				t.Errorf("Apply(%q, %q) = %s, want %s", g, text, ids(got), ids(want))
			}
		}
	}
}

func TestApply_RoundTrip(t *testing.T) {
	convs := []archive.Conversation{
		{ID: "1", Title: "Trip", Group: "Travel", Created: "2024-01-01"},
		{ID: "2", Title: "Budget", Group: "Finance", Created: "2024-01-02"},
	}

	got := Apply(convs, "Travel", "")
	if len(got) != 1 || got[0] != convs[0] {
		t.Errorf("group Travel = %+v", got)
	}

	got = Apply(convs, "", "bud")
	if len(got) != 1 || got[0] != convs[1] {
		t.Errorf("text bud = %+v", got)
	}
}
