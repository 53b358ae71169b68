package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ldevreaux/marquee/internal/backend"
	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/plex"
)

// DefaultMaxBitrateKbps is the conservative transcode cap. Together with
// H.264/AAC in mpegts segments it guarantees the transcode is playable by
// either backend.
const DefaultMaxBitrateKbps = 20000

// Gateway is the slice of the metadata gateway the resolver consumes.
type Gateway interface {
	Metadata(ctx context.Context, ratingKey string) (*plex.Metadata, error)
	Endpoint(ctx context.Context) (*plex.Endpoint, error)
	StreamURL(ctx context.Context, ratingKey string, maxVideoBitrate int) (string, error)
}

// SessionStarter initializes a transcode session from a start URL.
type SessionStarter interface {
	Start(ctx context.Context, startURL string, settle time.Duration) (sessionID, sessionURL string, err error)
}

// Resolver picks between direct play and transcode for an item, driven by
// the active backend's declared capabilities rather than the backend kind.
type Resolver struct {
	gateway Gateway
	starter SessionStarter
}

// New creates a resolver.
func New(gateway Gateway, starter SessionStarter) *Resolver {
	return &Resolver{gateway: gateway, starter: starter}
}

// Resolve produces a playable descriptor for the item. Direct play is used
// when the backend can handle the container/codec combination and the
// gateway advertises a file path; otherwise the stream is transcoded with
// the conservative profile.
func (r *Resolver) Resolve(ctx context.Context, item media.Item, caps backend.Capabilities) (*Descriptor, error) {
	md, err := r.gateway.Metadata(ctx, item.RatingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	ep, err := r.endpoint(ctx)
	if err != nil {
		return nil, err
	}

	if d := r.directDescriptor(md, caps, ep); d != nil {
		return d, nil
	}
	return r.transcodeDescriptor(ctx, item, caps, DefaultMaxBitrateKbps)
}

// ResolveTranscode forces transcode delivery, used for the direct-play
// fallback and for quality changes.
func (r *Resolver) ResolveTranscode(ctx context.Context, item media.Item, caps backend.Capabilities, maxBitrateKbps int) (*Descriptor, error) {
	return r.transcodeDescriptor(ctx, item, caps, maxBitrateKbps)
}

func (r *Resolver) endpoint(ctx context.Context) (*plex.Endpoint, error) {
	ep, err := r.gateway.Endpoint(ctx)
	switch {
	case errors.Is(err, plex.ErrNoServers):
		return nil, fmt.Errorf("%w: %v", ErrNoServerAvailable, err)
	case errors.Is(err, plex.ErrNoConnections):
		return nil, fmt.Errorf("%w: %v", ErrNoConnectionAvailable, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	return ep, nil
}

// directDescriptor returns a direct-play descriptor, or nil when the
// backend cannot handle the file or no file path is advertised.
func (r *Resolver) directDescriptor(md *plex.Metadata, caps backend.Capabilities, ep *plex.Endpoint) *Descriptor {
	m := md.FirstMedia()
	if m == nil || len(m.Part) == 0 || m.Part[0].Key == "" {
		return nil
	}
	if !caps.CanDirectPlay(m.Container, m.VideoCodec, m.AudioCodec) {
		logrus.WithFields(logrus.Fields{
			"container": m.Container,
			"video":     m.VideoCodec,
			"audio":     m.AudioCodec,
			"backend":   caps.Name,
		}).Debug("direct play incompatible, transcoding")
		return nil
	}

	return &Descriptor{
		URL:        ep.BaseURL + m.Part[0].Key + "?X-Plex-Token=" + url.QueryEscape(ep.Token),
		Mode:       ModeDirect,
		ServerBase: ep.BaseURL,
		Token:      ep.Token,
	}
}

func (r *Resolver) transcodeDescriptor(ctx context.Context, item media.Item, caps backend.Capabilities, maxBitrateKbps int) (*Descriptor, error) {
	rawURL, err := r.gateway.StreamURL(ctx, item.RatingKey, maxBitrateKbps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || rawURL == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStreamURL, rawURL)
	}
	base := parsed.Scheme + "://" + parsed.Host
	token := parsed.Query().Get("X-Plex-Token")

	// A "start" URL means the session must be initialized before segments
	// exist; anything else is already a playable playlist.
	if !strings.Contains(parsed.Path, "/start.m3u8") {
		return &Descriptor{
			URL:        rawURL,
			Mode:       ModeTranscodeHLS,
			SessionID:  parsed.Query().Get("session"),
			ServerBase: base,
			Token:      token,
		}, nil
	}

	sessionID, sessionURL, err := r.starter.Start(ctx, rawURL, caps.TranscodeSettle)
	if err != nil {
		// A session that fails to start is a resolution failure.
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	return &Descriptor{
		URL:        sessionURL,
		Mode:       ModeTranscodeHLS,
		SessionID:  sessionID,
		ServerBase: base,
		Token:      token,
	}, nil
}
