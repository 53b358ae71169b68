//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/ldevreaux/marquee/internal/session"
)

// Adapter exposes the playback session over MPRIS on D-Bus, so desktop
// media keys and applets control the session like any other player.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(controller *session.Controller) (*Adapter, error) {
	a := &Adapter{}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{controller: controller}

	a.server = server.NewServer("marquee", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Marquee", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"video/mp4", "video/x-matroska", "application/x-mpegURL"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	controller *session.Controller
}

func (p *playerAdapter) Next() error {
	p.controller.PlayNext()
	return nil
}

func (p *playerAdapter) Previous() error {
	return nil // Not supported
}

func (p *playerAdapter) Pause() error {
	if p.controller.Snapshot().Status == session.StatusPlaying {
		p.controller.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.controller.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.controller.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	if p.controller.Snapshot().Status == session.StatusPaused {
		p.controller.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	snap := p.controller.Snapshot()
	p.controller.SeekTo(snap.PositionMs + int64(offset)/1000)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.controller.SeekTo(int64(position) / 1000)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.controller.Snapshot().Status {
	case session.StatusPlaying, session.StatusResolving, session.StatusLoading:
		return types.PlaybackStatusPlaying, nil
	case session.StatusPaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.controller.Snapshot().Speed, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.controller.SetSpeed(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.controller.Snapshot()
	if !snap.Status.IsActive() {
		return types.Metadata{}, nil
	}

	item := snap.Item
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(item.RatingKey)),
		Length:  types.Microseconds(snap.DurationMs * 1000),
		Title:   item.Title,
	}
	if item.IsEpisode() {
		meta.Album = item.GrandparentTitle
		meta.Artist = []string{item.GrandparentTitle}
		meta.TrackNumber = item.Index
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.controller.Snapshot().Volume, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.controller.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.controller.Snapshot().PositionMs * 1000, nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.25, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 4.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.controller.Snapshot().NextItem != nil, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.controller.Snapshot().Status.IsActive(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(ratingKey string) string {
	h := fnv.New64a()
	h.Write([]byte(ratingKey))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
