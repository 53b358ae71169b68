package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ldevreaux/marquee/internal/backend"
	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/plex"
)

type fakeGateway struct {
	metadata    *plex.Metadata
	metadataErr error
	endpoint    *plex.Endpoint
	endpointErr error
	streamURL   string
	streamErr   error

	streamBitrates []int
}

func (f *fakeGateway) Metadata(context.Context, string) (*plex.Metadata, error) {
	return f.metadata, f.metadataErr
}

func (f *fakeGateway) Endpoint(context.Context) (*plex.Endpoint, error) {
	return f.endpoint, f.endpointErr
}

func (f *fakeGateway) StreamURL(_ context.Context, _ string, maxVideoBitrate int) (string, error) {
	f.streamBitrates = append(f.streamBitrates, maxVideoBitrate)
	return f.streamURL, f.streamErr
}

type fakeStarter struct {
	sessionID  string
	sessionURL string
	err        error

	startURLs []string
	settles   []time.Duration
}

func (f *fakeStarter) Start(_ context.Context, startURL string, settle time.Duration) (string, string, error) {
	f.startURLs = append(f.startURLs, startURL)
	f.settles = append(f.settles, settle)
	return f.sessionID, f.sessionURL, f.err
}

func mkvMetadata() *plex.Metadata {
	return &plex.Metadata{
		RatingKey: "42",
		Media: []plex.Media{{
			Container:  "mkv",
			VideoCodec: "h264",
			AudioCodec: "aac",
			Part:       []plex.Part{{Key: "/library/parts/99/file.mkv"}},
		}},
	}
}

func TestResolver_DirectPlay(t *testing.T) {
	gw := &fakeGateway{
		metadata: mkvMetadata(),
		endpoint: &plex.Endpoint{BaseURL: "http://pms:32400", Token: "tok"},
	}
	r := New(gw, &fakeStarter{})

	d, err := r.Resolve(context.Background(), media.Item{RatingKey: "42"}, backend.MPVCaps())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Mode != ModeDirect {
		t.Errorf("Mode = %q, want direct", d.Mode)
	}
	if d.URL != "http://pms:32400/library/parts/99/file.mkv?X-Plex-Token=tok" {
		t.Errorf("URL = %q", d.URL)
	}
	if d.IsTranscode() {
		t.Error("direct descriptor reports IsTranscode")
	}
}

func TestResolver_CapabilityDrivenDirectPlay(t *testing.T) {
	// The identical item direct plays on the embedded engine but not on
	// the external player.
	md := mkvMetadata()
	md.Media[0].VideoCodec = "vc1"

	gw := &fakeGateway{
		metadata:  md,
		endpoint:  &plex.Endpoint{BaseURL: "http://pms:32400", Token: "tok"},
		streamURL: "http://pms:32400/video/:/transcode/universal/session/s9/base/index.m3u8?session=s9&X-Plex-Token=tok",
	}
	r := New(gw, &fakeStarter{})
	item := media.Item{RatingKey: "42"}

	d, err := r.Resolve(context.Background(), item, backend.EmbeddedCaps())
	if err != nil {
		t.Fatalf("Resolve embedded: %v", err)
	}
	if d.Mode != ModeDirect {
		t.Errorf("embedded Mode = %q, want direct", d.Mode)
	}

	d, err = r.Resolve(context.Background(), item, backend.MPVCaps())
	if err != nil {
		t.Fatalf("Resolve mpv: %v", err)
	}
	if d.Mode != ModeTranscodeHLS {
		t.Errorf("mpv Mode = %q, want transcode-hls", d.Mode)
	}
}

func TestResolver_TranscodeWithStartURL(t *testing.T) {
	gw := &fakeGateway{
		metadata:  &plex.Metadata{RatingKey: "42"}, // no media info: cannot direct play
		endpoint:  &plex.Endpoint{BaseURL: "http://pms:32400", Token: "tok"},
		streamURL: "http://pms:32400/video/:/transcode/universal/start.m3u8?session=s1&X-Plex-Token=tok",
	}
	st := &fakeStarter{
		sessionID:  "s1",
		sessionURL: "http://pms:32400/video/:/transcode/universal/session/s1/base/index.m3u8?X-Plex-Token=tok",
	}
	r := New(gw, st)

	caps := backend.EmbeddedCaps()
	d, err := r.Resolve(context.Background(), media.Item{RatingKey: "42"}, caps)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Mode != ModeTranscodeHLS || d.SessionID != "s1" {
		t.Errorf("descriptor = %+v", d)
	}
	if d.URL != st.sessionURL {
		t.Errorf("URL = %q, want derived session URL", d.URL)
	}
	if len(st.settles) != 1 || st.settles[0] != caps.TranscodeSettle {
		t.Errorf("settle = %v, want backend's %v", st.settles, caps.TranscodeSettle)
	}
	if d.ServerBase != "http://pms:32400" || d.Token != "tok" {
		t.Errorf("teardown fields = %q %q", d.ServerBase, d.Token)
	}
}

func TestResolver_TranscodeWithReadyPlaylist(t *testing.T) {
	gw := &fakeGateway{
		metadata:  &plex.Metadata{RatingKey: "42"},
		endpoint:  &plex.Endpoint{BaseURL: "http://pms:32400", Token: "tok"},
		streamURL: "http://pms:32400/video/:/transcode/universal/session/s2/base/index.m3u8?session=s2&X-Plex-Token=tok",
	}
	st := &fakeStarter{}
	r := New(gw, st)

	d, err := r.Resolve(context.Background(), media.Item{RatingKey: "42"}, backend.MPVCaps())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(st.startURLs) != 0 {
		t.Errorf("starter invoked for a ready playlist: %v", st.startURLs)
	}
	if d.SessionID != "s2" {
		t.Errorf("SessionID = %q, want s2", d.SessionID)
	}
}

func TestResolver_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		gw   *fakeGateway
		want error
	}{
		{
			name: "metadata failure",
			gw:   &fakeGateway{metadataErr: errors.New("boom")},
			want: ErrResolutionFailed,
		},
		{
			name: "no servers",
			gw:   &fakeGateway{metadata: mkvMetadata(), endpointErr: plex.ErrNoServers},
			want: ErrNoServerAvailable,
		},
		{
			name: "no connections",
			gw:   &fakeGateway{metadata: mkvMetadata(), endpointErr: plex.ErrNoConnections},
			want: ErrNoConnectionAvailable,
		},
		{
			name: "empty stream url",
			gw: &fakeGateway{
				metadata: &plex.Metadata{RatingKey: "42"},
				endpoint: &plex.Endpoint{BaseURL: "http://pms:32400", Token: "tok"},
			},
			want: ErrInvalidStreamURL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.gw, &fakeStarter{})
			_, err := r.Resolve(context.Background(), media.Item{RatingKey: "42"}, backend.MPVCaps())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResolver_SessionStartFailureIsResolutionFailure(t *testing.T) {
	gw := &fakeGateway{
		metadata:  &plex.Metadata{RatingKey: "42"},
		endpoint:  &plex.Endpoint{BaseURL: "http://pms:32400", Token: "tok"},
		streamURL: "http://pms:32400/video/:/transcode/universal/start.m3u8?session=s1&X-Plex-Token=tok",
	}
	r := New(gw, &fakeStarter{err: errors.New("timeout")})

	_, err := r.Resolve(context.Background(), media.Item{RatingKey: "42"}, backend.MPVCaps())
	if !errors.Is(err, ErrResolutionFailed) {
		t.Errorf("err = %v, want ErrResolutionFailed", err)
	}
}

func TestResolver_ResolveTranscodeUsesRequestedBitrate(t *testing.T) {
	gw := &fakeGateway{
		streamURL: "http://pms:32400/playlist.m3u8?session=s3&X-Plex-Token=tok",
	}
	r := New(gw, &fakeStarter{})

	d, err := r.ResolveTranscode(context.Background(), media.Item{RatingKey: "42"}, backend.MPVCaps(), 4000)
	if err != nil {
		t.Fatalf("ResolveTranscode: %v", err)
	}
	if d.Mode != ModeTranscodeHLS {
		t.Errorf("Mode = %q", d.Mode)
	}
	if len(gw.streamBitrates) != 1 || gw.streamBitrates[0] != 4000 {
		t.Errorf("bitrates = %v, want [4000]", gw.streamBitrates)
	}
}

func TestDescriptor_MarkStopped(t *testing.T) {
	d := &Descriptor{Mode: ModeTranscodeHLS, SessionID: "s1"}
	if !d.MarkStopped() {
		t.Error("first MarkStopped = false, want true")
	}
	if d.MarkStopped() {
		t.Error("second MarkStopped = true, want false")
	}
}
