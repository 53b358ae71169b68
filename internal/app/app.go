// Package app is the bubbletea shell: it owns the screen layout, routes key
// input through the keymap, and bridges the playback session controller's
// subscription into the message loop.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldevreaux/marquee/internal/config"
	"github.com/ldevreaux/marquee/internal/keymap"
	"github.com/ldevreaux/marquee/internal/notify"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/session"
	"github.com/ldevreaux/marquee/internal/state"
	"github.com/ldevreaux/marquee/internal/ui/browse"
	"github.com/ldevreaux/marquee/internal/ui/popup"
	"github.com/ldevreaux/marquee/internal/ui/styles"
)

const headerHeight = 1

// Gateway is the slice of the metadata gateway the shell consumes.
type Gateway interface {
	Libraries(ctx context.Context) ([]plex.Metadata, error)
	Children(ctx context.Context, key string) ([]plex.Metadata, error)
}

// Deps wires the shell's collaborators.
type Deps struct {
	Controller *session.Controller
	Gateway    Gateway
	State      *state.Manager
	Notifier   notify.Notifier
	Player     config.PlayerConfig
}

// Model is the top-level bubbletea model.
type Model struct {
	deps     Deps
	resolver *keymap.Resolver

	browser browse.Model
	sub     *session.Subscription
	snap    session.Snapshot

	popup popup.Popup // nil when no popup is open

	spinner spinner.Model

	width, height int
	statusErr     string
	notifyID      uint32
	quitting      bool
}

// New creates the shell and subscribes to the session controller.
func New(deps Deps) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.T().S().Muted

	browser := browse.New()
	browser.SetFocused(true)
	browser.SetLoading(true)

	return Model{
		deps:     deps,
		resolver: keymap.NewResolver(keymap.Bindings),
		browser:  browser,
		sub:      deps.Controller.Subscribe(),
		snap:     deps.Controller.Snapshot(),
		spinner:  sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadLibraries(m.deps.Gateway),
		listenSnapshots(m.sub),
		listenItemChanges(m.sub),
	)
}

// barVisible reports whether the player bar occupies screen space.
func (m Model) barVisible() bool {
	switch m.snap.Status {
	case session.StatusIdle, session.StatusEnded:
		return false
	default:
		return true
	}
}

// layout pushes the current dimensions into the browser panel.
func (m *Model) layout() {
	h := m.height - headerHeight
	if m.barVisible() {
		h -= barHeight()
	}
	m.browser.SetSize(m.width, max(h, 0))
	if m.popup != nil {
		m.popup.SetSize(m.width, m.height)
	}
}

// persist saves the user settings that survive restarts.
func (m Model) persist() {
	if m.deps.State == nil {
		return
	}
	snap := m.deps.Controller.Snapshot()
	_ = m.deps.State.SavePlayerState(state.PlayerState{
		Volume:  snap.Volume,
		Muted:   snap.Muted,
		Backend: m.deps.Player.Backend,
		Quality: snap.Quality,
	})
}
