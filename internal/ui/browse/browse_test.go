package browse

import (
	"strings"
	"testing"

	"github.com/ldevreaux/marquee/internal/icons"
	"github.com/ldevreaux/marquee/internal/keymap"
	"github.com/ldevreaux/marquee/internal/plex"
)

func sections() []plex.Metadata {
	return []plex.Metadata{
		{RatingKey: "1", Key: "1", Type: "movie", Title: "Movies"},
		{RatingKey: "2", Key: "2", Type: "show", Title: "TV Shows"},
	}
}

func episodes() []plex.Metadata {
	return []plex.Metadata{
		{RatingKey: "e1", Type: "episode", Title: "Pilot", Index: 1, ViewCount: 1},
		{RatingKey: "e2", Type: "episode", Title: "Part 2", Index: 2, ViewOffset: 500000},
		{RatingKey: "e3", Type: "episode", Title: "Part 3", Index: 3},
	}
}

func newModel() Model {
	m := New()
	m.SetSize(80, 24)
	m.SetFocused(true)
	return m
}

func TestSelectOnDirectoryOpens(t *testing.T) {
	m := newModel()
	m.SetRoot(sections())

	if ev := m.Handle(keymap.ActionSelect); ev != EventOpen {
		t.Errorf("select on section = %v, want EventOpen", ev)
	}
	if key := m.SelectedChildrenKey(); key != "1" {
		t.Errorf("children key = %q, want section key", key)
	}
}

func TestSelectOnEpisodePlays(t *testing.T) {
	m := newModel()
	m.SetRoot(sections())
	m.Push("2", "TV Shows", episodes())

	m.Handle(keymap.ActionMoveDown)
	if ev := m.Handle(keymap.ActionSelect); ev != EventPlay {
		t.Errorf("select on episode = %v, want EventPlay", ev)
	}
	md, ok := m.Selected()
	if !ok || md.RatingKey != "e2" {
		t.Errorf("selected = %+v", md)
	}
}

func TestBackRestoresParentCursor(t *testing.T) {
	m := newModel()
	m.SetRoot(sections())
	m.Handle(keymap.ActionMoveDown) // cursor on TV Shows
	m.Push("2", "TV Shows", episodes())

	if ev := m.Handle(keymap.ActionMoveLeft); ev != EventBack {
		t.Errorf("back = %v, want EventBack", ev)
	}
	md, ok := m.Selected()
	if !ok || md.Title != "TV Shows" {
		t.Errorf("after back selected = %+v, want TV Shows", md)
	}

	// Back at root is a no-op.
	if ev := m.Handle(keymap.ActionMoveLeft); ev != EventNone {
		t.Errorf("back at root = %v, want EventNone", ev)
	}
}

func TestHandleIgnoredWhileLoading(t *testing.T) {
	m := newModel()
	m.SetRoot(sections())
	m.SetLoading(true)

	if ev := m.Handle(keymap.ActionSelect); ev != EventNone {
		t.Errorf("select while loading = %v, want EventNone", ev)
	}
}

func TestRefreshRequested(t *testing.T) {
	m := newModel()
	m.SetRoot(sections())
	if ev := m.Handle(keymap.ActionRefresh); ev != EventRefresh {
		t.Errorf("refresh = %v, want EventRefresh", ev)
	}
}

func TestReplaceItemsClampsCursor(t *testing.T) {
	m := newModel()
	m.SetRoot(sections())
	m.Push("2", "TV Shows", episodes())
	m.Handle(keymap.ActionJumpEnd)

	m.ReplaceItems(episodes()[:1])
	md, ok := m.Selected()
	if !ok || md.RatingKey != "e1" {
		t.Errorf("after shrink selected = %+v, want e1", md)
	}
}

func TestFormatEntryIndicators(t *testing.T) {
	icons.Init("none")

	eps := episodes()
	watched := formatEntry(eps[0])
	if !strings.Contains(watched, "1. Pilot") || !strings.HasSuffix(watched, icons.Watched()) {
		t.Errorf("watched entry = %q", watched)
	}

	inProgress := formatEntry(eps[1])
	if !strings.HasSuffix(inProgress, "▸") {
		t.Errorf("in-progress entry = %q", inProgress)
	}

	fresh := formatEntry(eps[2])
	if strings.HasSuffix(fresh, "▸") || strings.HasSuffix(fresh, icons.Watched()) {
		t.Errorf("fresh entry = %q", fresh)
	}
}

func TestViewShowsBreadcrumbAndDescription(t *testing.T) {
	icons.Init("none")
	m := newModel()
	m.SetRoot(sections())
	m.Push("2", "TV Shows", []plex.Metadata{{
		RatingKey: "e1", Type: "episode", Title: "Pilot", Index: 1,
		ParentTitle: "Season 1", Duration: 3600000,
		Media: []plex.Media{{
			Container: "mkv", VideoCodec: "hevc", AudioCodec: "aac", Bitrate: 24300,
			Part: []plex.Part{{Key: "/f.mkv", Size: 8 << 30}},
		}},
	}})

	out := m.View()
	for _, want := range []string{"Libraries / TV Shows", "1. Pilot", "mkv", "hevc/aac", "24.3 Mbps", "1h00m"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
