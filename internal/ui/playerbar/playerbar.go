// Package playerbar renders the playback status bar at the bottom of the
// screen: title, transport state, progress, and contextual hints (marker
// skip, next-episode countdown, buffering).
package playerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/session"
	"github.com/ldevreaux/marquee/internal/stream"
	"github.com/ldevreaux/marquee/internal/ui/render"
)

// State holds everything needed to render the player bar.
type State struct {
	Status    session.Status
	Buffering bool

	Title     string
	NextTitle string

	PositionMs int64
	DurationMs int64

	Volume float64
	Muted  bool
	Speed  float64

	Mode    stream.Mode
	Quality string

	Marker       *media.Marker
	CountdownSec int

	ErrMsg string
}

// NewState builds the bar state from a session snapshot.
func NewState(snap session.Snapshot) State {
	s := State{
		Status:       snap.Status,
		Buffering:    snap.Buffering,
		Title:        snap.Item.DisplayTitle(),
		PositionMs:   snap.PositionMs,
		DurationMs:   snap.DurationMs,
		Volume:       snap.Volume,
		Muted:        snap.Muted,
		Speed:        snap.Speed,
		Mode:         snap.Mode,
		Quality:      snap.Quality,
		Marker:       snap.ActiveMarker,
		CountdownSec: snap.CountdownSec,
		ErrMsg:       snap.ErrMsg,
	}
	if snap.NextItem != nil {
		s.NextTitle = snap.NextItem.Title
	}
	return s
}

// Height returns the total height of the player bar including borders.
func Height() int {
	return 4 // top border + 2 content rows + bottom border
}

// Render returns the player bar for the given width, or empty string when
// nothing is playing.
func Render(s State, width int) string {
	switch s.Status {
	case session.StatusIdle, session.StatusEnded:
		return ""
	case session.StatusFailed:
		return renderFailed(s, width)
	default:
	}

	innerWidth := max(width-6, 0)

	top := render.Row(renderTitleLine(s, innerWidth), renderHint(s), innerWidth)
	bottom := renderProgressLine(s, innerWidth)

	return barStyle().Padding(0, 2).Width(width - 2).Render(top + "\n" + bottom)
}

func renderFailed(s State, width int) string {
	msg := s.ErrMsg
	if msg == "" {
		msg = "playback failed"
	}
	line1 := errorStyle().Render("✗ " + render.TruncateEllipsis(s.Title, max(width-10, 10)))
	line2 := errorStyle().Render(render.TruncateEllipsis(msg, max(width-8, 10)))
	return barStyle().Padding(0, 2).Width(width - 2).Render(line1 + "\n" + line2)
}

func renderTitleLine(s State, innerWidth int) string {
	symbol := statusSymbol(s)

	var tags []string
	if s.Quality != "" {
		tags = append(tags, s.Quality)
	}
	if s.Mode == stream.ModeDirect {
		tags = append(tags, "direct")
	}
	if s.Speed != 0 && s.Speed != 1 {
		tags = append(tags, fmt.Sprintf("%gx", s.Speed))
	}
	tagStr := strings.Join(tags, " · ")

	// Leave at least a third of the row for the hint segment.
	maxTitle := max(innerWidth*2/3-lipgloss.Width(symbol)-lipgloss.Width(tagStr)-4, 10)
	title := titleStyle().Render(render.TruncateEllipsis(s.Title, maxTitle))

	line := symbol + " " + title
	if tagStr != "" {
		line += "  " + metaStyle().Render(tagStr)
	}
	return line
}

// renderHint picks the single most relevant contextual hint. The countdown
// wins over the marker hint, which wins over the buffering indicator.
func renderHint(s State) string {
	switch {
	case s.CountdownSec >= 0 && s.NextTitle != "":
		text := fmt.Sprintf("next in %ds: %s", s.CountdownSec, render.TruncateEllipsis(s.NextTitle, 30))
		return hintStyle().Render(text)
	case s.Marker != nil:
		return hintStyle().Render(fmt.Sprintf("tab: skip %s", s.Marker.Kind))
	case s.Buffering:
		return warnStyle().Render("buffering…")
	case s.Status == session.StatusResolving:
		return warnStyle().Render("resolving…")
	case s.Status == session.StatusLoading:
		return warnStyle().Render("loading…")
	}
	return ""
}

func renderProgressLine(s State, innerWidth int) string {
	posStr := formatTime(s.PositionMs)
	durStr := formatTime(s.DurationMs)
	timeStr := posStr + " / " + durStr
	volStr := renderVolume(s.Volume, s.Muted)

	barWidth := innerWidth - lipgloss.Width(timeStr) - lipgloss.Width(volStr) - 4
	if barWidth < 5 {
		return timeStyle().Render(timeStr)
	}

	var ratio float64
	if s.DurationMs > 0 {
		ratio = float64(s.PositionMs) / float64(s.DurationMs)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)
	bar := filledStyle().Render(strings.Repeat("━", filled)) +
		emptyStyle().Render(strings.Repeat("─", barWidth-filled))

	return bar + "  " + timeStyle().Render(timeStr) + "  " + timeStyle().Render(volStr)
}

func renderVolume(volume float64, muted bool) string {
	if muted {
		return "muted"
	}
	return fmt.Sprintf("vol %d%%", int(volume*100))
}

func statusSymbol(s State) string {
	switch s.Status {
	case session.StatusPlaying:
		return playSymbol()
	case session.StatusPaused:
		return pauseSymbol()
	default:
		return loadSymbol()
	}
}

// formatTime renders a millisecond position as m:ss, or h:mm:ss past one hour.
func formatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSec := ms / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	sec := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
