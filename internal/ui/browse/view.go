package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ldevreaux/marquee/internal/icons"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/ui"
	"github.com/ldevreaux/marquee/internal/ui/render"
	"github.com/ldevreaux/marquee/internal/ui/styles"
)

// listOverhead is the vertical space around the item rows: panel border,
// breadcrumb header, separator, and the description footer.
const listOverhead = ui.PanelOverhead + 1

// View renders the browser panel.
func (m Model) View() string {
	width, height := m.Size()
	if width == 0 || height == 0 {
		return ""
	}

	t := styles.T()
	innerWidth := width - 2
	listHeight := m.ListHeight(listOverhead)

	borderColor := t.Border
	if m.IsFocused() {
		borderColor = t.BorderFocus
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(borderColor).
		Render(render.Truncate(m.breadcrumb(), innerWidth))

	lines := make([]string, 0, listHeight+3)
	lines = append(lines,
		render.Pad(header, innerWidth),
		t.S().Subtle.Render(render.Separator(innerWidth)),
	)
	lines = append(lines, m.renderItems(innerWidth, listHeight)...)
	lines = append(lines, m.renderDescription(innerWidth))

	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(innerWidth)

	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) breadcrumb() string {
	if len(m.levels) == 0 {
		return "Libraries"
	}
	titles := make([]string, len(m.levels))
	for i, lv := range m.levels {
		titles[i] = lv.title
	}
	return strings.Join(titles, " / ")
}

func (m Model) renderItems(width, height int) []string {
	t := styles.T()
	lines := make([]string, height)

	if m.loading {
		for i := range height {
			lines[i] = render.EmptyLine(width)
		}
		if height > 0 {
			lines[0] = t.S().Muted.Render(render.Pad("  Loading...", width))
		}
		return lines
	}

	if len(m.levels) == 0 {
		for i := range height {
			lines[i] = render.EmptyLine(width)
		}
		return lines
	}

	top := m.levels[len(m.levels)-1]
	for i := range height {
		idx := i + top.cursor.Offset()
		if idx >= len(top.items) {
			lines[i] = render.EmptyLine(width)
			continue
		}

		isCursor := idx == top.cursor.Pos()
		label := formatEntry(top.items[idx])
		label = render.Truncate(label, width-2)

		prefix := "  "
		if isCursor {
			prefix = "> "
		}

		line := render.Pad(prefix+label, width)
		if isCursor && m.IsFocused() {
			lines[i] = t.S().Cursor.Render(line)
		} else {
			lines[i] = t.S().Base.Render(line)
		}
	}
	return lines
}

// formatEntry renders one row label: type icon, title, and a watched or
// in-progress indicator.
func formatEntry(md plex.Metadata) string {
	var label string
	switch md.Type {
	case "movie":
		label = icons.FormatMovie(md.Title)
	case "show":
		label = icons.FormatShow(md.Title)
	case "season":
		label = icons.FormatSeason(md.Title)
	case "episode":
		title := md.Title
		if md.Index > 0 {
			title = fmt.Sprintf("%d. %s", md.Index, md.Title)
		}
		label = icons.FormatEpisode(title)
	default:
		label = icons.FormatLibrary(md.Title)
	}

	switch {
	case md.ViewCount > 0:
		label += " " + icons.Watched()
	case md.ViewOffset > 0:
		label += " ▸"
	}
	return label
}

// renderDescription shows the selected item's technical info when available.
func (m Model) renderDescription(width int) string {
	t := styles.T()
	md, ok := m.Selected()
	if !ok {
		return render.EmptyLine(width)
	}

	var parts []string
	if md.Type == "episode" && md.ParentTitle != "" {
		parts = append(parts, md.ParentTitle)
	}
	if media := md.FirstMedia(); media != nil {
		if media.Container != "" {
			parts = append(parts, media.Container)
		}
		if media.VideoCodec != "" || media.AudioCodec != "" {
			parts = append(parts, media.VideoCodec+"/"+media.AudioCodec)
		}
		if media.Bitrate > 0 {
			parts = append(parts, fmt.Sprintf("%.1f Mbps", float64(media.Bitrate)/1000))
		}
		if len(media.Part) > 0 && media.Part[0].Size > 0 {
			parts = append(parts, humanize.Bytes(uint64(media.Part[0].Size)))
		}
	}
	if md.Duration > 0 {
		parts = append(parts, formatRuntime(md.Duration))
	}

	return t.S().Muted.Render(render.TruncateAndPad(" "+strings.Join(parts, " · "), width))
}

func formatRuntime(ms int64) string {
	totalMin := ms / 60000
	h := totalMin / 60
	m := totalMin % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
