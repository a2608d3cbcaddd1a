package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/thinkwright/convo/internal/archive"
	"github.com/thinkwright/convo/internal/browse"
	"github.com/thinkwright/convo/internal/config"
)

type pane int

const (
	paneList pane = iota
	paneDetail
)

// AllGroupsLabel is the first group choice; it disables the group filter.
const AllGroupsLabel = "All groups"

// Options wires a Model to its backend.
type Options struct {
	Backend Backend
	Config  config.Config
	Logger  zerolog.Logger
	Grapher Grapher         // nil uses SparkGrapher
	Context context.Context // ends with the program; nil uses context.Background
}

type Model struct {
	ctx     context.Context
	backend Backend
	log     zerolog.Logger
	cfg     config.Config

	browser  *browse.Browser
	list     ConversationList
	detail   DetailPane
	stats    StatsPane
	activity ActivityPane
	filter   InputBar
	search   InputBar
	spinner  spinner.Model

	groupIdx    int
	focus       pane
	width       int
	height      int
	ready       bool
	indexFailed bool
	confirmQuit bool
}

func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	b := browse.NewBrowser(opts.Config.LinkBase, opts.Config.DiscardStaleResponses)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorYellow)

	return Model{
		ctx:      ctx,
		backend:  opts.Backend,
		log:      opts.Logger,
		cfg:      opts.Config,
		browser:  b,
		list:     NewConversationList(b.Sidebar()),
		detail:   NewDetailPane(b.Detail()),
		stats:    NewStatsPane(),
		activity: NewActivityPane(opts.Grapher),
		filter:   NewFilterBar(),
		search:   NewSearchBar(),
		spinner:  sp,
		focus:    paneList,
	}
}

// Init fires the three startup fetches. They run concurrently and land in Update
// in whatever order they complete.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadIndexCmd(m.ctx, m.backend),
		loadStatsCmd(m.ctx, m.backend),
		loadActivityCmd(m.ctx, m.backend),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutPanes()
		return m, nil

	case indexLoadedMsg:
		if msg.err != nil {
			m.fail("conversations", msg.err)
			m.indexFailed = true
			m.list.SetEmptyText("")
			return m, nil
		}
		if m.browser.SetIndex(msg.index) {
			m.refresh()
		}
		return m, nil

	case threadLoadedMsg:
		if msg.err != nil {
			m.fail("thread", msg.err, "conversation_id", msg.id)
			return m, nil
		}
		if m.browser.ThreadLoaded(msg.ticket, msg.thread) {
			m.detail.Sync()
		} else {
			m.log.Debug().Str("op", "thread").Str("conversation_id", msg.id).Msg("dropped stale response")
		}
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.fail("search", msg.err, "query", msg.query)
			return m, nil
		}
		if m.browser.SearchLoaded(msg.ticket, msg.results) {
			m.detail.Sync()
		} else {
			m.log.Debug().Str("op", "search").Str("query", msg.query).Msg("dropped stale response")
		}
		return m, nil

	case statsLoadedMsg:
		if msg.err != nil {
			m.fail("statistics", msg.err)
			return m, nil
		}
		m.stats.SetStatistics(msg.stats)
		m.layoutPanes()
		return m, nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.fail("activity", msg.err)
			return m, nil
		}
		m.activity.SetSeries(msg.series)
		return m, nil

	case linkOpenedMsg:
		if msg.err != nil {
			m.fail("open", msg.err, "url", msg.url)
		}
		return m, nil

	case spinner.TickMsg:
		// Keep ticking only while the placeholder is on screen.
		if m.browser.Detail().View() != browse.ViewSearching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.confirmQuit {
			return m.handleConfirmQuit(msg)
		}
		if m.search.IsEditing() {
			return m.handleSearchKey(msg)
		}
		if m.filter.IsEditing() {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// fail logs a fetch failure. Nothing on screen changes; the log is the only record.
func (m *Model) fail(op string, err error, kv ...string) {
	ev := m.log.Error().Err(err).Str("op", op)
	var rf *archive.RequestFailure
	if errors.As(err, &rf) {
		ev = ev.Str("kind", rf.Kind.String())
		if rf.Status != 0 {
			ev = ev.Int("status", rf.Status)
		}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Str(kv[i], kv[i+1])
	}
	ev.Msg(describe(op))
}

func (m Model) handleConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "q", "enter":
		return m, tea.Quit
	default:
		m.confirmQuit = false
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		return m, nil
	case "enter":
		m.search.Blur()
		return m, m.startSearch(m.search.Value())
	}
	_, cmd := m.search.Update(msg)
	return m, cmd
}

// handleFilterKey re-renders the list on every keystroke that changes the value.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.filter.Blur()
		return m, nil
	}
	changed, cmd := m.filter.Update(msg)
	if changed {
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		m.confirmQuit = true
		return m, nil

	case "tab":
		if m.focus == paneList {
			m.focus = paneDetail
		} else {
			m.focus = paneList
		}

	case "/":
		return m, m.search.Focus()

	case "f":
		if m.browser.Ready() {
			return m, m.filter.Focus()
		}

	case "[":
		m.cycleGroup(-1)
	case "]":
		m.cycleGroup(1)

	case "o":
		if link := m.browser.Detail().Link(); link != "" {
			return m, openURLCmd(link)
		}

	case "up", "k":
		if m.focus == paneList {
			m.list.Up()
		} else {
			m.detail.ScrollUp(1)
		}
	case "down", "j":
		if m.focus == paneList {
			m.list.Down()
		} else {
			m.detail.ScrollDown(1)
		}
	case "pgup":
		if m.focus == paneList {
			m.list.PageUp()
		} else {
			m.detail.ScrollUp(m.detail.height / 2)
		}
	case "pgdown":
		if m.focus == paneList {
			m.list.PageDown()
		} else {
			m.detail.ScrollDown(m.detail.height / 2)
		}
	case "g", "home":
		m.detail.Top()
	case "G", "end":
		m.detail.Bottom()

	case "enter":
		if m.focus == paneList {
			if row, ok := m.list.CursorRow(); ok {
				return m, m.selectRow(row)
			}
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	g := m.geometry()
	inList := msg.X < g.leftW && msg.Y >= 2 && msg.Y < 2+g.listH
	inDetail := msg.X >= g.leftW && msg.Y >= g.detailTop+1 && msg.Y < g.detailTop+1+g.detailH

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if inDetail {
			m.detail.ScrollUp(3)
		} else if inList {
			m.list.Up()
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if inDetail {
			m.detail.ScrollDown(3)
		} else if inList {
			m.list.Down()
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inList {
			m.focus = paneList
			if row, ok := m.list.RowAt(msg.Y - 2); ok {
				return m, m.selectRow(row)
			}
		} else if inDetail {
			m.focus = paneDetail
		}
	}
	return m, nil
}

// selectRow highlights an item row and starts its thread load. Headers and rows
// from an older render are ignored.
func (m *Model) selectRow(row int) tea.Cmd {
	h, ok := m.browser.Sidebar().Handle(row)
	if !ok {
		return nil
	}
	id, ticket, ok := m.browser.SelectRow(h)
	if !ok {
		return nil
	}
	m.list.MoveTo(row)
	return loadThreadCmd(m.ctx, m.backend, ticket, id)
}

// startSearch puts the placeholder up and fires the query. An empty query is
// ignored.
func (m *Model) startSearch(query string) tea.Cmd {
	ticket, ok := m.browser.StartSearch(query)
	if !ok {
		return nil
	}
	m.detail.Sync()
	return tea.Batch(searchCmd(m.ctx, m.backend, ticket, query), m.spinner.Tick)
}

func (m *Model) groupChoices() []string {
	return append([]string{AllGroupsLabel}, m.browser.Index().Groups()...)
}

// selectedGroup is the group filter value; "" for all groups.
func (m *Model) selectedGroup() string {
	if m.groupIdx == 0 {
		return ""
	}
	return m.groupChoices()[m.groupIdx]
}

func (m *Model) cycleGroup(delta int) {
	if !m.browser.Ready() {
		return
	}
	n := len(m.groupChoices())
	m.groupIdx = ((m.groupIdx+delta)%n + n) % n
	m.refresh()
}

// refresh re-filters and re-renders the sidebar from the current controls.
func (m *Model) refresh() {
	m.browser.Refresh(m.selectedGroup(), m.filter.Value())
	m.list.Reset()
	if m.browser.Index().Len() == 0 {
		m.list.SetEmptyText("No conversations")
	} else {
		m.list.SetEmptyText("No matching conversations")
	}
}

// geometry is the screen split shared by layout, rendering and mouse hit tests.
// Rows: header, body panels, input line, status bar.
type geometry struct {
	leftW, rightW int
	listH, statsH int // content rows
	activityH     int
	detailTop     int // screen row of the detail panel's top border
	detailH       int
}

func (m Model) geometry() geometry {
	leftW := m.width * 30 / 100
	if leftW < 28 {
		leftW = 28
	}
	rightW := max(m.width-leftW, 10)
	bodyH := m.height - 3

	statsH := min(max(m.stats.Len(), 3), max(bodyH/2, 3))
	listH := max(bodyH-statsH-4, 1)
	activityH := 2
	detailH := max(bodyH-activityH-4, 1)

	return geometry{
		leftW:     leftW,
		rightW:    rightW,
		listH:     listH,
		statsH:    statsH,
		activityH: activityH,
		detailTop: 1 + activityH + 2,
		detailH:   detailH,
	}
}

func (m *Model) layoutPanes() {
	g := m.geometry()
	m.list.SetSize(g.leftW, g.listH)
	m.stats.SetSize(g.leftW, g.statsH)
	m.activity.SetSize(g.rightW, g.activityH)
	m.detail.SetSize(g.rightW, g.detailH)
	m.filter.SetWidth(m.width)
	m.search.SetWidth(m.width)
}

func (m Model) View() string {
	if !m.ready {
		return ""
	}
	g := m.geometry()

	var b strings.Builder
	b.WriteString(m.renderHeader(g))
	b.WriteString("\n")

	listBox := RenderPanel(m.listTitle(), m.list.View(m.focus == paneList), g.leftW, g.listH, m.focus == paneList)
	statsBox := RenderPanel("STATISTICS", m.stats.View(), g.leftW, g.statsH, false)
	activityBox := RenderPanel("ACTIVITY", m.activity.View(), g.rightW, g.activityH, false)
	detailBox := RenderPanel(m.detail.Title(), m.detail.View(m.spinner.View()), g.rightW, g.detailH, m.focus == paneDetail)

	left := lipgloss.JoinVertical(lipgloss.Left, listBox, statsBox)
	right := lipgloss.JoinVertical(lipgloss.Left, activityBox, detailBox)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	b.WriteString(m.renderInputLine())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if m.confirmQuit {
		return overlayCenter(b.String(), m.renderConfirmQuit(), m.width, m.height)
	}
	return b.String()
}

func (m Model) listTitle() string {
	group := AllGroupsLabel
	if m.browser.Ready() {
		group = m.groupChoices()[m.groupIdx]
	}
	return fmt.Sprintf("CONVERSATIONS · %s (%d)", strings.ToUpper(group), len(m.browser.Sidebar().ItemIndexes()))
}

func (m Model) renderHeader(g geometry) string {
	bg := lipgloss.NewStyle().Background(ColorBarBg)

	leftCol := bg.Render(" ") +
		bg.Foreground(ColorAccent).Bold(true).Render("◆") +
		bg.Render(" ") +
		bg.Foreground(ColorCyan).Bold(true).Render("CONVO")
	if pad := g.leftW - visibleLen(leftCol); pad > 0 {
		leftCol += bg.Render(strings.Repeat(" ", pad))
	}

	sep := bg.Foreground(ColorDim).Render(" │ ")
	var parts []string
	if x := m.browser.Index(); x != nil {
		parts = append(parts,
			bg.Foreground(ColorCyan).Render(fmt.Sprintf("CONVS %d", x.Len())),
			bg.Foreground(ColorYellow).Render(fmt.Sprintf("GROUPS %d", len(x.Groups()))),
		)
	}
	if link := m.browser.Detail().Link(); link != "" {
		parts = append(parts, bg.Foreground(ColorGreen).Render("THREAD"))
	}
	stats := bg.Render(" ") + strings.Join(parts, sep)

	server := bg.Foreground(ColorBarText).Render(m.cfg.ServerURL + "  ")
	spacer := bg.Render(strings.Repeat(" ", max(m.width-visibleLen(leftCol)-visibleLen(stats)-visibleLen(server), 1)))
	return truncateToWidth(leftCol+stats+spacer+server, m.width)
}

// renderInputLine shows whichever input is being edited, or the resting values.
func (m Model) renderInputLine() string {
	var line string
	switch {
	case m.search.IsEditing():
		line = " " + m.search.View()
	case m.filter.IsEditing():
		line = " " + m.filter.View()
	default:
		var parts []string
		if v := m.filter.View(); v != "" {
			parts = append(parts, v)
		}
		if v := m.search.View(); v != "" {
			parts = append(parts, v)
		}
		line = " " + strings.Join(parts, DimStyle.Render("  │  "))
	}
	return padRight(truncateToWidth(line, m.width), m.width)
}

func (m Model) renderStatusBar() string {
	bg := lipgloss.NewStyle().Background(ColorBarBg)

	leftText := "  [/] Search  [f] Filter  [[/]] Group  [Enter] Open  [o] Browser  [Tab] Switch  [q] Quit"
	left := bg.Foreground(ColorBarText).Render(leftText)

	var right string
	switch {
	case m.indexFailed:
	case !m.browser.Ready():
		right = bg.Foreground(ColorYellow).Render("LOADING...")
	default:
		right = bg.Foreground(ColorGreen).Render("READY")
	}
	right += bg.Render("  ")

	spacer := bg.Render(strings.Repeat(" ", max(m.width-visibleLen(left)-visibleLen(right), 1)))
	return truncateToWidth(left+spacer+right, m.width)
}
