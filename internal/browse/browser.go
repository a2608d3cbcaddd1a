package browse

import "github.com/thinkwright/convo/internal/archive"

// Browser ties the index, sidebar and detail pane together. Each method is one
// user event or one fetch completion; callers run them from a single goroutine.
type Browser struct {
	index   *Index
	sidebar Sidebar
	detail  *Detail
}

func NewBrowser(linkBase string, discardStale bool) *Browser {
	return &Browser{detail: NewDetail(linkBase, discardStale)}
}

// SetIndex installs the loaded index. Later calls are ignored: the list is
// fetched once per session.
func (b *Browser) SetIndex(x *Index) bool {
	if b.index != nil || x == nil {
		return false
	}
	b.index = x
	return true
}

// Ready reports whether the index loaded, which gates all list interaction.
func (b *Browser) Ready() bool {
	return b.index != nil
}

func (b *Browser) Index() *Index {
	return b.index
}

func (b *Browser) Sidebar() *Sidebar {
	return &b.sidebar
}

func (b *Browser) Detail() *Detail {
	return b.detail
}

// Refresh re-filters the index with the current control values and re-renders
// the sidebar.
func (b *Browser) Refresh(group, text string) []Row {
	if b.index == nil {
		return nil
	}
	return b.sidebar.Render(Apply(b.index.Conversations(), group, text))
}

// SelectRow highlights the row and starts its thread load.
func (b *Browser) SelectRow(h RowHandle) (string, Ticket, bool) {
	if b.index == nil {
		return "", 0, false
	}
	id, ok := b.sidebar.Select(h)
	if !ok {
		return "", 0, false
	}
	return id, b.detail.BeginThread(id), true
}

func (b *Browser) ThreadLoaded(t Ticket, th archive.Thread) bool {
	return b.detail.ApplyThread(t, th)
}

// StartSearch shows the placeholder and returns the ticket for the query.
// An empty query does nothing.
func (b *Browser) StartSearch(query string) (Ticket, bool) {
	if query == "" {
		return 0, false
	}
	return b.detail.BeginSearch(query), true
}

// SearchLoaded applies results and, when applied, clears the sidebar highlight.
func (b *Browser) SearchLoaded(t Ticket, results []archive.SearchResult) bool {
	if !b.detail.ApplySearch(t, results) {
		return false
	}
	b.sidebar.Clear()
	return true
}
