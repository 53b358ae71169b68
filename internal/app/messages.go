package app

import (
	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/session"
)

// snapshotMsg carries a session state update from the controller.
type snapshotMsg session.Snapshot

// itemChangedMsg fires when the session advanced to another item on its own.
type itemChangedMsg media.Item

// subClosedMsg fires when the controller released the subscription.
type subClosedMsg struct{}

// notifiedMsg carries the desktop notification id so the next one replaces it.
type notifiedMsg uint32

// librariesMsg carries the root library sections.
type librariesMsg []plex.Metadata

// childrenMsg carries one directory listing.
type childrenMsg struct {
	key     string
	title   string
	items   []plex.Metadata
	replace bool // refresh of the current level instead of a push
}

// fetchErrMsg carries a failed gateway call, already formatted for display.
type fetchErrMsg struct {
	msg string
}
