package playerbar

import (
	"strings"
	"testing"

	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/session"
	"github.com/ldevreaux/marquee/internal/stream"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name     string
		ms       int64
		expected string
	}{
		{"zero", 0, "0:00"},
		{"negative clamps to zero", -500, "0:00"},
		{"under a minute", 45000, "0:45"},
		{"minutes", 125000, "2:05"},
		{"exactly one hour", 3600000, "1:00:00"},
		{"movie length", 7384000, "2:03:04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTime(tt.ms); got != tt.expected {
				t.Errorf("formatTime(%d) = %q, want %q", tt.ms, got, tt.expected)
			}
		})
	}
}

func TestRenderHiddenWhenIdle(t *testing.T) {
	for _, status := range []session.Status{session.StatusIdle, session.StatusEnded} {
		s := State{Status: status, Title: "Heat"}
		if got := Render(s, 120); got != "" {
			t.Errorf("Render with status %v should be empty, got %q", status, got)
		}
	}
}

func TestRenderShowsTitleAndTimes(t *testing.T) {
	s := State{
		Status:     session.StatusPlaying,
		Title:      "Heat",
		PositionMs: 125000,
		DurationMs: 3600000,
		Volume:     0.8,
		Speed:      1,
		Quality:    "Original",
		Mode:       stream.ModeDirect,
	}
	out := Render(s, 120)

	for _, want := range []string{"Heat", "2:05", "1:00:00", "vol 80%", "Original", "direct"} {
		if !strings.Contains(out, want) {
			t.Errorf("bar missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailedShowsError(t *testing.T) {
	s := State{
		Status: session.StatusFailed,
		Title:  "Heat",
		ErrMsg: "stream resolution failed",
	}
	out := Render(s, 120)
	if !strings.Contains(out, "stream resolution failed") {
		t.Errorf("failed bar missing error message:\n%s", out)
	}
}

func TestRenderHintPrecedence(t *testing.T) {
	marker := &media.Marker{Kind: media.MarkerIntro, StartMs: 5000, EndMs: 95000}

	countdown := State{
		Status:       session.StatusPlaying,
		CountdownSec: 12,
		NextTitle:    "Part 2",
		Marker:       marker,
		Buffering:    true,
	}
	if hint := renderHint(countdown); !strings.Contains(hint, "next in 12s") {
		t.Errorf("countdown should win, got %q", hint)
	}

	markerOnly := State{Status: session.StatusPlaying, CountdownSec: session.NoCountdown, Marker: marker}
	if hint := renderHint(markerOnly); !strings.Contains(hint, "skip intro") {
		t.Errorf("marker hint expected, got %q", hint)
	}

	buffering := State{Status: session.StatusPlaying, CountdownSec: session.NoCountdown, Buffering: true}
	if hint := renderHint(buffering); !strings.Contains(hint, "buffering") {
		t.Errorf("buffering hint expected, got %q", hint)
	}

	plain := State{Status: session.StatusPlaying, CountdownSec: session.NoCountdown}
	if hint := renderHint(plain); hint != "" {
		t.Errorf("no hint expected, got %q", hint)
	}
}

func TestRenderVolume(t *testing.T) {
	if got := renderVolume(0.55, false); got != "vol 55%" {
		t.Errorf("renderVolume = %q", got)
	}
	if got := renderVolume(0.55, true); got != "muted" {
		t.Errorf("renderVolume muted = %q", got)
	}
}

func TestNewStateFromSnapshot(t *testing.T) {
	next := media.Item{RatingKey: "e2", Title: "Part 2", Kind: media.KindEpisode}
	snap := session.Snapshot{
		Item: media.Item{
			RatingKey:        "e1",
			Title:            "Pilot",
			Kind:             media.KindEpisode,
			GrandparentTitle: "Some Show",
		},
		NextItem:     &next,
		Status:       session.StatusPaused,
		PositionMs:   1000,
		DurationMs:   2000,
		Volume:       0.5,
		Speed:        1.5,
		Quality:      "4 Mbps 720p",
		Mode:         stream.ModeTranscodeHLS,
		CountdownSec: session.NoCountdown,
	}

	s := NewState(snap)
	if s.Title != "Some Show - Pilot" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.NextTitle != "Part 2" {
		t.Errorf("NextTitle = %q", s.NextTitle)
	}
	if s.Status != session.StatusPaused || s.Speed != 1.5 || s.Quality != "4 Mbps 720p" {
		t.Errorf("state = %+v", s)
	}
}
