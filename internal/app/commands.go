package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldevreaux/marquee/internal/errmsg"
	"github.com/ldevreaux/marquee/internal/session"
)

// fetchTimeout bounds every gateway call issued from the message loop.
const fetchTimeout = 15 * time.Second

// listenSnapshots blocks on the subscription until the next state update.
// Re-issued after every snapshotMsg.
func listenSnapshots(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap, ok := <-sub.Snapshots:
			if !ok {
				return subClosedMsg{}
			}
			return snapshotMsg(snap)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

// listenItemChanges blocks until the session auto-advances to another item.
func listenItemChanges(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case item, ok := <-sub.ItemChanged:
			if !ok {
				return subClosedMsg{}
			}
			return itemChangedMsg(item)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func loadLibraries(gw Gateway) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		items, err := gw.Libraries(ctx)
		if err != nil {
			return fetchErrMsg{msg: errmsg.Format(errmsg.OpLibraryBrowse, err)}
		}
		return librariesMsg(items)
	}
}

func loadChildren(gw Gateway, key, title string, replace bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		items, err := gw.Children(ctx, key)
		if err != nil {
			return fetchErrMsg{msg: errmsg.Format(errmsg.OpLibraryBrowse, err)}
		}
		return childrenMsg{key: key, title: title, items: items, replace: replace}
	}
}
