package browse

import (
	"testing"

	"github.com/thinkwright/convo/internal/archive"
)

func loadedBrowser(t *testing.T) *Browser {
	t.Helper()
	b := NewBrowser("", true)
	if !b.SetIndex(NewIndex([]archive.Conversation{
		conv("1", "Trip", "Travel"),
		conv("2", "Budget", "Finance"),
		conv("3", "Flights", "Travel"),
	})) {
		t.Fatal("index not installed")
	}
	b.Refresh("", "")
	return b
}

func TestBrowser_NotReadyIgnoresSelection(t *testing.T) {
	b := NewBrowser("", true)
	if b.Ready() {
		t.Error("browser without index should not be ready")
	}
	if rows := b.Refresh("", ""); rows != nil {
		t.Error("refresh without index should render nothing")
	}
	if _, _, ok := b.SelectRow(RowHandle{}); ok {
		t.Error("selection without index should be ignored")
	}
}

func TestBrowser_SetIndexOnce(t *testing.T) {
	b := loadedBrowser(t)
	if b.SetIndex(NewIndex(nil)) {
		t.Error("second index should be ignored")
	}
	if b.Index().Len() != 3 {
		t.Errorf("index len = %d", b.Index().Len())
	}
}

func TestBrowser_SearchClearsHighlight(t *testing.T) {
	b := loadedBrowser(t)
	h, _ := b.Sidebar().Handle(1)
	_, threadTicket, ok := b.SelectRow(h)
	if !ok {
		t.Fatal("select failed")
	}
	b.ThreadLoaded(threadTicket, thread("1", "hi"))

	tk, ok := b.StartSearch("trip")
	if !ok {
		t.Fatal("search not started")
	}
	if len(b.Sidebar().Highlighted()) != 1 {
		t.Error("highlight stays until the search completes")
	}
	b.SearchLoaded(tk, results(1))
	if len(b.Sidebar().Highlighted()) != 0 {
		t.Error("completed search should clear the highlight")
	}
}

func TestBrowser_DroppedSearchKeepsHighlight(t *testing.T) {
	b := loadedBrowser(t)
	old, _ := b.StartSearch("old")
	h, _ := b.Sidebar().Handle(1)
	b.SelectRow(h)

	if b.SearchLoaded(old, results(2)) {
		t.Error("search older than the selection should be dropped")
	}
	if len(b.Sidebar().Highlighted()) != 1 {
		t.Error("dropped search must not clear the highlight")
	}
}

func TestBrowser_EmptySearchIgnored(t *testing.T) {
	b := loadedBrowser(t)
	if _, ok := b.StartSearch(""); ok {
		t.Error("empty query should not start a search")
	}
	if b.Detail().View() != ViewEmpty {
		t.Error("empty query should not touch the pane")
	}
}

func TestBrowser_RoundTrip(t *testing.T) {
	b := NewBrowser("", true)
	b.SetIndex(NewIndex([]archive.Conversation{
		{ID: "1", Title: "Trip", Group: "Travel", Created: "2024-01-01"},
		{ID: "2", Title: "Budget", Group: "Finance", Created: "2024-01-02"},
	}))

	rows := b.Refresh("Travel", "")
	if len(rows) != 2 || rows[1].Conversation.ID != "1" {
		t.Errorf("Travel rows = %+v", rows)
	}
	rows = b.Refresh("", "bud")
	if len(rows) != 2 || rows[0].Label != "Finance" || rows[1].Conversation.ID != "2" {
		t.Errorf("bud rows = %+v", rows)
	}
}
