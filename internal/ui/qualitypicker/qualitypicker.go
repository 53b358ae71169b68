// Package qualitypicker provides the popup for switching delivery quality.
package qualitypicker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldevreaux/marquee/internal/session"
	"github.com/ldevreaux/marquee/internal/ui"
	"github.com/ldevreaux/marquee/internal/ui/popup"
	"github.com/ldevreaux/marquee/internal/ui/styles"
)

// Compile-time check that Model implements popup.Popup.
var _ popup.Popup = (*Model)(nil)

// Model holds the state for the quality picker popup.
type Model struct {
	ui.Base
	current string
	cursor  int
}

// New creates the picker with the cursor on the active preset.
func New(current string) *Model {
	m := &Model{current: current}
	for i, q := range session.Qualities {
		if q.Label == current {
			m.cursor = i
			break
		}
	}
	return m
}

// Init implements popup.Popup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements popup.Popup.
func (m *Model) Update(msg tea.Msg) (popup.Popup, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "q", "Q":
		return m, func() tea.Msg { return ActionMsg(Close{}) }
	case "j", "down":
		if m.cursor < len(session.Qualities)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		label := session.Qualities[m.cursor].Label
		return m, func() tea.Msg { return ActionMsg(Chosen{Label: label}) }
	}
	return m, nil
}

// View implements popup.Popup.
func (m *Model) View() string {
	s := styles.T().S()

	var sb strings.Builder
	sb.WriteString(s.Title.Render("Quality"))
	sb.WriteString("\n\n")

	for i, q := range session.Qualities {
		line := q.Label
		if q.Label == m.current {
			line += " (current)"
		}
		if i == m.cursor {
			sb.WriteString(s.Cursor.Render("> " + line))
		} else {
			sb.WriteString("  " + s.Base.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(s.Subtle.Render("enter select · esc close"))
	return sb.String()
}
