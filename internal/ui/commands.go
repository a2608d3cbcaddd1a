package ui

import (
	"context"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/thinkwright/convo/internal/archive"
	"github.com/thinkwright/convo/internal/browse"
)

// Backend is the archive API as the browser sees it. *archive.Client satisfies it.
type Backend interface {
	Conversations(ctx context.Context) ([]archive.Conversation, error)
	Thread(ctx context.Context, conversationID string) (archive.Thread, error)
	Search(ctx context.Context, query string) ([]archive.SearchResult, error)
	Statistics(ctx context.Context) (archive.Statistics, error)
	Activity(ctx context.Context) (archive.Activity, error)
}

type indexLoadedMsg struct {
	index *browse.Index
	err   error
}

type threadLoadedMsg struct {
	ticket browse.Ticket
	id     string
	thread archive.Thread
	err    error
}

type searchDoneMsg struct {
	ticket  browse.Ticket
	query   string
	results []archive.SearchResult
	err     error
}

type statsLoadedMsg struct {
	stats archive.Statistics
	err   error
}

type activityLoadedMsg struct {
	series archive.Activity
	err    error
}

type linkOpenedMsg struct {
	url string
	err error
}

func loadIndexCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		x, err := browse.Load(ctx, b)
		return indexLoadedMsg{index: x, err: err}
	}
}

func loadThreadCmd(ctx context.Context, b Backend, t browse.Ticket, id string) tea.Cmd {
	return func() tea.Msg {
		th, err := b.Thread(ctx, id)
		return threadLoadedMsg{ticket: t, id: id, thread: th, err: err}
	}
}

func searchCmd(ctx context.Context, b Backend, t browse.Ticket, query string) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Search(ctx, query)
		return searchDoneMsg{ticket: t, query: query, results: res, err: err}
	}
}

func loadStatsCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		st, err := b.Statistics(ctx)
		return statsLoadedMsg{stats: st, err: err}
	}
}

func loadActivityCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		series, err := b.Activity(ctx)
		return activityLoadedMsg{series: series, err: err}
	}
}

// openURLCmd hands url to the platform's browser launcher.
func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return linkOpenedMsg{url: url, err: browserCommand(url).Start()}
	}
}

func browserCommand(url string) *exec.Cmd {
	name, args := browserLauncher(runtime.GOOS)
	return exec.Command(name, append(args, url)...)
}

func browserLauncher(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// describe is the log message for a failed fetch.
func describe(op string) string {
	return op + " request failed"
}
