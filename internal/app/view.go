package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ldevreaux/marquee/internal/ui/playerbar"
	"github.com/ldevreaux/marquee/internal/ui/popup"
	"github.com/ldevreaux/marquee/internal/ui/styles"
)

func barHeight() int {
	return playerbar.Height()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.width == 0 || m.height == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.browser.View())

	if m.barVisible() {
		sb.WriteString("\n")
		sb.WriteString(playerbar.Render(playerbar.NewState(m.snap), m.width))
	}

	view := sb.String()
	if m.popup != nil {
		overlay := popup.RenderBordered(m.popup.View(), m.width, m.height, popup.SizeAuto)
		view = popup.Compose(view, overlay, m.width, m.height)
	}
	return view
}

// renderHeader draws the one-line banner: app name, a spinner while a fetch
// is in flight, and the last fetch error if any.
func (m Model) renderHeader() string {
	t := styles.T()

	left := styles.ApplyBoldGradient("Marquee", t.Primary, t.Secondary)
	if m.browser.Loading() {
		left += " " + m.spinner.View()
	}

	right := ""
	if m.statusErr != "" {
		right = t.S().Error.Render(m.statusErr)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
