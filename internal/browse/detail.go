package browse

import "github.com/thinkwright/convo/internal/archive"

type BlockKind int

const (
	BlockLink        BlockKind = iota // thread header linking to the hosted view
	BlockMessage                      // one message of a thread
	BlockPlaceholder                  // "Searching..."
	BlockEmpty                        // search returned nothing
	BlockResult                       // one search hit
)

const (
	SearchingText = "Searching..."
	NoResultsText = "No results found."
	OpenLinkText  = "Open in ChatGPT"
)

// Block is one drawable unit of the detail pane.
type Block struct {
	Kind    BlockKind
	Title   string
	URL     string
	Role    string
	Text    string
	Created string
	Shaded  bool
}

type View int

const (
	ViewEmpty View = iota
	ViewThread
	ViewSearching
	ViewSearch
)

// Ticket orders detail requests. Every Begin call issues a larger one.
type Ticket uint64

// Detail is the state of the detail pane. Thread loads and searches both replace
// its blocks wholesale; the last one applied wins.
//
// With discardStale set, a response whose ticket is older than the latest Begin
// is dropped. Without it responses apply in arrival order.
type Detail struct {
	linkBase     string
	discardStale bool

	latest    Ticket
	view      View
	blocks    []Block
	link      string
	query     string
	scrollTop bool
}

func NewDetail(linkBase string, discardStale bool) *Detail {
	if linkBase == "" {
		linkBase = archive.DefaultLinkBase
	}
	return &Detail{linkBase: linkBase, discardStale: discardStale}
}

// BeginThread registers a thread load. The pane keeps its content until the
// response is applied.
func (d *Detail) BeginThread(conversationID string) Ticket {
	d.latest++
	return d.latest
}

// ApplyThread replaces the pane with the thread. Reports whether it was applied.
func (d *Detail) ApplyThread(t Ticket, th archive.Thread) bool {
	if d.isStale(t) {
		return false
	}
	link := archive.HostedURL(d.linkBase, th.ConversationID)
	blocks := make([]Block, 0, len(th.Messages)+1)
	blocks = append(blocks, Block{Kind: BlockLink, Title: OpenLinkText, URL: link})
	for _, m := range th.Messages {
		blocks = append(blocks, Block{
			Kind:    BlockMessage,
			Role:    Sanitize(m.Role),
			Text:    Sanitize(m.Text),
			Created: Sanitize(m.Created),
		})
	}
	d.view = ViewThread
	d.blocks = blocks
	d.link = link
	d.query = ""
	d.scrollTop = true
	return true
}

// BeginSearch shows the searching placeholder right away and registers the query.
func (d *Detail) BeginSearch(query string) Ticket {
	d.latest++
	d.view = ViewSearching
	d.blocks = []Block{{Kind: BlockPlaceholder, Title: SearchingText}}
	d.link = ""
	d.query = query
	return d.latest
}

// ApplySearch replaces the pane with the results, shading odd rows. Reports
// whether it was applied.
func (d *Detail) ApplySearch(t Ticket, results []archive.SearchResult) bool {
	if d.isStale(t) {
		return false
	}
	var blocks []Block
	if len(results) == 0 {
		blocks = []Block{{Kind: BlockEmpty, Title: NoResultsText}}
	} else {
		blocks = make([]Block, 0, len(results))
		for i, r := range results {
			blocks = append(blocks, Block{
				Kind:    BlockResult,
				Title:   Sanitize(r.Title),
				URL:     archive.HostedURL(d.linkBase, r.ID),
				Role:    Sanitize(r.Role),
				Text:    Sanitize(r.Text),
				Created: Sanitize(r.Created),
				Shaded:  i%2 == 1,
			})
		}
	}
	d.view = ViewSearch
	d.blocks = blocks
	d.link = ""
	d.scrollTop = true
	return true
}

func (d *Detail) isStale(t Ticket) bool {
	return d.discardStale && t != d.latest
}

func (d *Detail) Blocks() []Block {
	return d.blocks
}

func (d *Detail) View() View {
	return d.view
}

// Link is the hosted URL of the thread on screen, or "" outside thread view.
func (d *Detail) Link() string {
	return d.link
}

// Query is the search behind the current search or searching view.
func (d *Detail) Query() string {
	return d.query
}

// TakeScrollTop reports whether the content was replaced since the last call,
// meaning the pane should scroll to its top.
func (d *Detail) TakeScrollTop() bool {
	st := d.scrollTop
	d.scrollTop = false
	return st
}
