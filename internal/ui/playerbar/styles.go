package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ldevreaux/marquee/internal/ui/styles"
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Border)
}

func titleStyle() lipgloss.Style  { return styles.T().S().Title }
func metaStyle() lipgloss.Style   { return styles.T().S().Muted }
func timeStyle() lipgloss.Style   { return styles.T().S().Muted }
func hintStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(styles.T().Secondary) }
func warnStyle() lipgloss.Style   { return styles.T().S().Warning }
func errorStyle() lipgloss.Style  { return styles.T().S().Error }
func filledStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(styles.T().Primary) }
func emptyStyle() lipgloss.Style  { return styles.T().S().Subtle }

func playSymbol() string  { return styles.T().S().Playing.Render("▶") }
func pauseSymbol() string { return styles.T().S().Playing.Render("⏸") }
func loadSymbol() string  { return styles.T().S().Muted.Render("◌") }
