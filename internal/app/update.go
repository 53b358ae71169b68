package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldevreaux/marquee/internal/keymap"
	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/notify"
	"github.com/ldevreaux/marquee/internal/session"
	"github.com/ldevreaux/marquee/internal/ui/action"
	"github.com/ldevreaux/marquee/internal/ui/browse"
	"github.com/ldevreaux/marquee/internal/ui/helpbindings"
	"github.com/ldevreaux/marquee/internal/ui/qualitypicker"
)

const (
	volumeStep = 0.05
	speedStep  = 0.25
	maxSpeed   = 3.0
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		m.layout()
		return m, listenSnapshots(m.sub)

	case itemChangedMsg:
		return m, tea.Batch(
			notifyNowPlaying(m.deps.Notifier, media.Item(msg), m.notifyID),
			listenItemChanges(m.sub),
		)

	case notifiedMsg:
		m.notifyID = uint32(msg)
		return m, nil

	case subClosedMsg:
		return m, nil

	case librariesMsg:
		m.statusErr = ""
		m.browser.SetRoot(msg)
		return m, nil

	case childrenMsg:
		m.statusErr = ""
		if msg.replace {
			m.browser.ReplaceItems(msg.items)
		} else {
			m.browser.Push(msg.key, msg.title, msg.items)
		}
		return m, nil

	case fetchErrMsg:
		m.statusErr = msg.msg
		m.browser.SetLoading(false)
		return m, nil

	case action.Msg:
		return m.handleAction(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleAction consumes popup action messages.
func (m Model) handleAction(msg action.Msg) (tea.Model, tea.Cmd) {
	switch a := msg.Action.(type) {
	case helpbindings.Close:
		m.popup = nil
	case qualitypicker.Close:
		m.popup = nil
	case qualitypicker.Chosen:
		m.popup = nil
		m.deps.Controller.ChangeQuality(a.Label)
	}
	return m, nil
}

// handleKey routes a key press: an open popup gets it first, otherwise the
// keymap decides.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.popup != nil {
		var cmd tea.Cmd
		m.popup, cmd = m.popup.Update(msg)
		return m, cmd
	}

	switch act := m.resolver.Resolve(msg.String()); act {
	case keymap.ActionQuit:
		return m.quit()

	case keymap.ActionHelp:
		help := helpbindings.New()
		help.SetContexts([]string{"global", "browser", "playback"})
		m.popup = &help
		m.layout()
		return m, m.popup.Init()

	case keymap.ActionPlayPause:
		m.deps.Controller.TogglePlayPause()
	case keymap.ActionStop:
		m.deps.Controller.Stop()
	case keymap.ActionNextEpisode:
		m.deps.Controller.PlayNext()
	case keymap.ActionSeekForward:
		m.deps.Controller.Skip(m.deps.Player.SkipForwardSec)
	case keymap.ActionSeekBack:
		m.deps.Controller.Skip(-m.deps.Player.SkipBackSec)
	case keymap.ActionSkipMarker:
		m.deps.Controller.SkipActiveMarker()
	case keymap.ActionVolumeUp:
		m.deps.Controller.SetVolume(m.snap.Volume + volumeStep)
	case keymap.ActionVolumeDown:
		m.deps.Controller.SetVolume(m.snap.Volume - volumeStep)
	case keymap.ActionToggleMute:
		m.deps.Controller.ToggleMute()
	case keymap.ActionSpeedUp:
		m.deps.Controller.SetSpeed(min(m.snap.Speed+speedStep, maxSpeed))
	case keymap.ActionSpeedDown:
		m.deps.Controller.SetSpeed(m.snap.Speed - speedStep)

	case keymap.ActionQuality:
		m.popup = qualitypicker.New(m.snap.Quality)
		m.layout()
		return m, m.popup.Init()

	default:
		return m.handleBrowse(act)
	}
	return m, nil
}

// handleBrowse forwards navigation actions to the browser panel and turns
// its events into fetch commands or playback starts.
func (m Model) handleBrowse(act keymap.Action) (tea.Model, tea.Cmd) {
	switch m.browser.Handle(act) {
	case browse.EventOpen:
		md, ok := m.browser.Selected()
		if !ok {
			return m, nil
		}
		key := m.browser.SelectedChildrenKey()
		m.browser.SetLoading(true)
		return m, loadChildren(m.deps.Gateway, key, md.Title, false)

	case browse.EventPlay:
		md, ok := m.browser.Selected()
		if !ok {
			return m, nil
		}
		m.deps.Controller.Start(md.Item())

	case browse.EventRefresh:
		m.browser.SetLoading(true)
		if m.browser.Depth() <= 1 {
			return m, loadLibraries(m.deps.Gateway)
		}
		return m, loadChildren(m.deps.Gateway, m.browser.CurrentKey(), "", true)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.persist()
	return m, tea.Quit
}

// notifyNowPlaying posts a desktop notification for an auto-advance,
// replacing the previous one when there is one.
func notifyNowPlaying(n notify.Notifier, item media.Item, replaceID uint32) tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		id, err := n.Notify(notify.Notification{
			Title:      "Now Playing",
			Body:       item.DisplayTitle(),
			Timeout:    5000,
			ReplacesID: replaceID,
			Urgency:    notify.UrgencyLow,
		})
		if err != nil {
			return notifiedMsg(0)
		}
		return notifiedMsg(id)
	}
}
