package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputBar is a one-line text input that is either being edited or resting with
// its last value shown.
type InputBar struct {
	input   textinput.Model
	editing bool
	label   string
}

func newInputBar(label, prompt, placeholder string) InputBar {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = prompt
	ti.PromptStyle = lipgloss.NewStyle().Foreground(ColorCyan)
	ti.TextStyle = lipgloss.NewStyle().Foreground(ColorWhite)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(ColorDim)
	return InputBar{input: ti, label: label}
}

// NewFilterBar is the title filter. It keeps its value between edits.
func NewFilterBar() InputBar {
	return newInputBar("FILTER", "f ", "filter titles...")
}

// NewSearchBar is the full-text search input.
func NewSearchBar() InputBar {
	return newInputBar("SEARCH", "/ ", "search messages... (Enter: go)")
}

func (b *InputBar) SetWidth(w int) {
	b.input.Width = max(w-4, 1)
}

func (b *InputBar) Focus() tea.Cmd {
	b.editing = true
	return b.input.Focus()
}

func (b *InputBar) Blur() {
	b.editing = false
	b.input.Blur()
}

func (b *InputBar) IsEditing() bool {
	return b.editing
}

func (b *InputBar) Value() string {
	return b.input.Value()
}

// Update feeds a key to the input and reports whether the value changed.
func (b *InputBar) Update(msg tea.Msg) (bool, tea.Cmd) {
	before := b.input.Value()
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b.input.Value() != before, cmd
}

// View is the editing input, or the resting value as a dim badge.
func (b *InputBar) View() string {
	if b.editing {
		return b.input.View()
	}
	if v := b.input.Value(); v != "" {
		return DimStyle.Render(b.label+": ") + NormalStyle.Render(v)
	}
	return ""
}
