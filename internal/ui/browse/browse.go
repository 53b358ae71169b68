// Package browse provides the library browser panel: library sections at
// the root, then children levels (shows, seasons, episodes or movies) pushed
// onto a navigation stack. Each level keeps its own cursor so going back
// restores the previous position.
package browse

import (
	"github.com/ldevreaux/marquee/internal/keymap"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/ui"
	"github.com/ldevreaux/marquee/internal/ui/cursor"
)

// Event tells the parent what a handled action requires.
type Event int

const (
	EventNone    Event = iota
	EventOpen          // selected directory needs its children loaded
	EventPlay          // selected item is playable
	EventBack          // went up one level, nothing to load
	EventRefresh       // current level should be reloaded
)

type level struct {
	key    string // children key; empty for the root
	title  string
	items  []plex.Metadata
	cursor cursor.Cursor
}

// Model is the browser state.
type Model struct {
	ui.Base
	levels  []level
	loading bool
}

// New creates an empty browser; SetRoot populates it.
func New() Model {
	return Model{}
}

// SetLoading flags an in-flight fetch for the view.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// SetRoot replaces the whole stack with the library sections level.
func (m *Model) SetRoot(items []plex.Metadata) {
	m.levels = []level{{title: "Libraries", items: items, cursor: cursor.New(ui.ScrollMargin)}}
	m.loading = false
}

// Push adds a child level for the given directory.
func (m *Model) Push(key, title string, items []plex.Metadata) {
	m.levels = append(m.levels, level{
		key:    key,
		title:  title,
		items:  items,
		cursor: cursor.New(ui.ScrollMargin),
	})
	m.loading = false
}

// ReplaceItems swaps the current level's items after a refresh.
func (m *Model) ReplaceItems(items []plex.Metadata) {
	if len(m.levels) == 0 {
		m.SetRoot(items)
		return
	}
	top := &m.levels[len(m.levels)-1]
	top.items = items
	top.cursor.ClampToBounds(len(items))
	m.loading = false
}

// Depth returns the number of levels on the stack.
func (m Model) Depth() int {
	return len(m.levels)
}

// CurrentKey returns the children key of the current level, empty at root.
func (m Model) CurrentKey() string {
	if len(m.levels) == 0 {
		return ""
	}
	return m.levels[len(m.levels)-1].key
}

// Selected returns the item under the cursor.
func (m Model) Selected() (plex.Metadata, bool) {
	if len(m.levels) == 0 {
		return plex.Metadata{}, false
	}
	top := m.levels[len(m.levels)-1]
	if len(top.items) == 0 {
		return plex.Metadata{}, false
	}
	return top.items[top.cursor.Pos()], true
}

// SelectedChildrenKey returns the key used to list the selected directory's
// children. Library sections advertise it in Key, everything else in
// RatingKey.
func (m Model) SelectedChildrenKey() string {
	md, ok := m.Selected()
	if !ok {
		return ""
	}
	if len(m.levels) == 1 && md.Key != "" {
		return md.Key
	}
	return md.RatingKey
}

// Handle applies a keymap action and reports what the parent must do.
func (m *Model) Handle(action keymap.Action) Event {
	if len(m.levels) == 0 || m.loading {
		return EventNone
	}
	top := &m.levels[len(m.levels)-1]
	height := m.ListHeight(listOverhead)

	switch action {
	case keymap.ActionMoveDown:
		top.cursor.Move(1, len(top.items), height)
	case keymap.ActionMoveUp:
		top.cursor.Move(-1, len(top.items), height)
	case keymap.ActionJumpStart:
		top.cursor.JumpStart()
	case keymap.ActionJumpEnd:
		top.cursor.JumpEnd(len(top.items), height)
	case keymap.ActionPageDown:
		top.cursor.Move(height, len(top.items), height)
	case keymap.ActionPageUp:
		top.cursor.Move(-height, len(top.items), height)
	case keymap.ActionMoveLeft:
		if len(m.levels) > 1 {
			m.levels = m.levels[:len(m.levels)-1]
			return EventBack
		}
	case keymap.ActionMoveRight, keymap.ActionSelect:
		md, ok := m.Selected()
		if !ok {
			return EventNone
		}
		// Root entries are library sections, always containers even though
		// a movie section reports type "movie".
		if len(m.levels) == 1 || md.IsDirectory() {
			return EventOpen
		}
		return EventPlay
	case keymap.ActionRefresh:
		return EventRefresh
	}
	return EventNone
}
