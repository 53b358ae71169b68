package session

import (
	"testing"

	"github.com/ldevreaux/marquee/internal/media"
)

func TestResumePositionMs(t *testing.T) {
	tests := []struct {
		name      string
		persisted int64
		server    int64
		duration  int64
		want      int64
	}{
		{"fresh item", 0, 0, 3600000, 0},
		{"persisted offset", 125000, 0, 3600000, 125000},
		{"persisted wins over server", 125000, 200000, 3600000, 125000},
		{"noise offset yields server", 1500, 500000, 3600000, 500000},
		{"noise offset no server", 1800, 0, 3600000, 0},
		{"near end by remaining", 3580000, 0, 3600000, 0},
		{"near end by percent", 3550000, 0, 3600000, 0},
		{"outside near end window", 3500000, 0, 3600000, 3500000},
		{"mid file", 1800000, 0, 3600000, 1800000},
		{"unknown duration keeps offset", 125000, 0, 0, 125000},
		{"server offset near end discarded", 1000, 3590000, 3600000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resumePositionMs(tt.persisted, tt.server, tt.duration)
			if got != tt.want {
				t.Errorf("resumePositionMs(%d, %d, %d) = %d, want %d",
					tt.persisted, tt.server, tt.duration, got, tt.want)
			}
		})
	}
}

func TestCountdownSecs(t *testing.T) {
	credits := []media.Marker{
		{Kind: media.MarkerCredits, StartMs: 3300000, EndMs: 3600000},
	}

	tests := []struct {
		name      string
		isEpisode bool
		hasNext   bool
		markers   []media.Marker
		pos       int64
		dur       int64
		want      int
	}{
		{"movie never counts", false, true, credits, 3400000, 3600000, NoCountdown},
		{"no next never counts", true, false, credits, 3400000, 3600000, NoCountdown},
		{"before credits", true, true, credits, 3299999, 3600000, NoCountdown},
		{"at credits start", true, true, credits, 3300000, 3600000, 300},
		{"mid credits rounds up", true, true, credits, 3400500, 3600000, 200},
		{"at end", true, true, credits, 3600000, 3600000, 0},
		{"past end clamps to zero", true, true, credits, 3600500, 3600000, 0},
		{"no marker uses final window", true, true, nil, 3575000, 3600000, 25},
		{"no marker before window", true, true, nil, 3569999, 3600000, NoCountdown},
		{"unknown duration", true, true, credits, 3400000, 0, NoCountdown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := countdownSecs(tt.isEpisode, tt.hasNext, tt.markers, tt.pos, tt.dur)
			if got != tt.want {
				t.Errorf("countdownSecs(pos=%d) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}
}

func TestClampPositionMs(t *testing.T) {
	if got := clampPositionMs(-5, 1000); got != 0 {
		t.Errorf("negative position = %d, want 0", got)
	}
	if got := clampPositionMs(2000, 1000); got != 1000 {
		t.Errorf("past end = %d, want 1000", got)
	}
	if got := clampPositionMs(2000, 0); got != 2000 {
		t.Errorf("unknown duration = %d, want passthrough", got)
	}
}
