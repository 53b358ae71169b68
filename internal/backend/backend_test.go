package backend

import (
	"testing"
	"time"
)

func TestCapabilities_CanDirectPlay(t *testing.T) {
	mpvCaps := mpvCapabilities()
	embCaps := embeddedCapabilities()

	tests := []struct {
		container, video, audio string
		wantMPV, wantEmbedded   bool
	}{
		{"mkv", "h264", "aac", true, true},
		{"mp4", "hevc", "eac3", true, true},
		{"wmv", "wmv3", "wmav2", false, true},
		{"mkv", "vc1", "ac3", false, true},
		{"avi", "mpeg2video", "mp3", false, true},
		{"mkv", "h264", "wmav2", false, true},
	}
	for _, tt := range tests {
		if got := mpvCaps.CanDirectPlay(tt.container, tt.video, tt.audio); got != tt.wantMPV {
			t.Errorf("mpv CanDirectPlay(%s,%s,%s) = %v, want %v",
				tt.container, tt.video, tt.audio, got, tt.wantMPV)
		}
		if got := embCaps.CanDirectPlay(tt.container, tt.video, tt.audio); got != tt.wantEmbedded {
			t.Errorf("embedded CanDirectPlay(%s,%s,%s) = %v, want %v",
				tt.container, tt.video, tt.audio, got, tt.wantEmbedded)
		}
	}
}

func TestCapabilities_SettleDelays(t *testing.T) {
	if got := mpvCapabilities().TranscodeSettle; got != time.Second {
		t.Errorf("mpv settle = %v, want 1s", got)
	}
	if got := embeddedCapabilities().TranscodeSettle; got != 5*time.Second {
		t.Errorf("embedded settle = %v, want 5s", got)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		raw     string
		want    Kind
		wantErr bool
	}{
		{"mpv", KindMPV, false},
		{"embedded", KindEmbedded, false},
		{"", KindMPV, false},
		{"vlc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClampUnit(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.7, 0.7},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := clampUnit(tt.in); got != tt.want {
			t.Errorf("clampUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
