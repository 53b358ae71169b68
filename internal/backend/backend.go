// Package backend abstracts the two playback engines behind one control
// surface and one event stream. The session controller holds no
// backend-specific branches; variant differences live in the Capabilities
// each backend declares.
package backend

import (
	"fmt"
	"time"
)

// Player is the uniform contract both engines implement. State flows back
// to the controller only through the Events channel.
type Player interface {
	Load(url string) error
	Play() error
	Pause() error
	Seek(positionMs int64) error
	SetVolume(v float64) error // 0..1
	SetMuted(muted bool) error
	SetSpeed(multiplier float64) error
	SetCacheSecs(secs int) error
	Shutdown()
	Events() <-chan Event
	Caps() Capabilities
}

// Kind selects a backend variant at session construction. It is an explicit
// configuration value, never ambient global state.
type Kind string

const (
	// KindMPV controls an external mpv process over its JSON IPC socket.
	KindMPV Kind = "mpv"
	// KindEmbedded runs libmpv inside the process.
	KindEmbedded Kind = "embedded"
)

// ParseKind validates a configured backend name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMPV, KindEmbedded:
		return Kind(s), nil
	case "":
		return KindMPV, nil
	default:
		return "", fmt.Errorf("unknown backend %q", s)
	}
}

// Options carries construction parameters for the concrete backends.
type Options struct {
	MPVPath    string // mpv binary, defaults to "mpv" on PATH
	SocketPath string // IPC socket path, defaults to a per-process temp path
}

// New constructs the backend selected by kind.
func New(kind Kind, opts Options) (Player, error) {
	switch kind {
	case KindMPV:
		return NewMPV(opts)
	case KindEmbedded:
		return NewEmbedded()
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// Capabilities describes what a backend variant can do. The stream resolver
// consults CanDirectPlay instead of switching on the backend kind, and the
// transcode session manager uses TranscodeSettle for its post-start delay.
type Capabilities struct {
	Name            string
	TranscodeSettle time.Duration

	incompatibleContainers  map[string]bool
	incompatibleVideoCodecs map[string]bool
	incompatibleAudioCodecs map[string]bool
}

// CanDirectPlay reports whether the backend can play the original file for
// the given container/codec combination.
func (c Capabilities) CanDirectPlay(container, videoCodec, audioCodec string) bool {
	if c.incompatibleContainers[container] {
		return false
	}
	if c.incompatibleVideoCodecs[videoCodec] {
		return false
	}
	if c.incompatibleAudioCodecs[audioCodec] {
		return false
	}
	return true
}

// mpvCapabilities is the external-player variant. It relies on the host
// player build, which may lack the patent-encumbered decoders, so it
// declares the combinations known to fail there. It starts requesting
// segments lazily, so a short settle after transcode start suffices.
func mpvCapabilities() Capabilities {
	return Capabilities{
		Name:            "mpv",
		TranscodeSettle: time.Second,
		incompatibleContainers: map[string]bool{
			"wmv": true,
			"asf": true,
			"flv": true,
		},
		incompatibleVideoCodecs: map[string]bool{
			"vc1":        true,
			"wmv3":       true,
			"mpeg2video": true,
		},
		incompatibleAudioCodecs: map[string]bool{
			"wmav2": true,
		},
	}
}

// embeddedCapabilities is the in-process libmpv variant. It ships its own
// decoder set and direct plays everything, but it requests segments eagerly
// and needs the server to have produced a few before the playlist is usable.
func embeddedCapabilities() Capabilities {
	return Capabilities{
		Name:            "embedded",
		TranscodeSettle: 5 * time.Second,
	}
}

const (
	// eventBufferSize bounds each backend's event channel; producers drop
	// rather than block when the consumer falls behind.
	eventBufferSize = 64

	// stallThreshold is how long a buffering spell may last before the
	// backend reports a stall.
	stallThreshold = 8 * time.Second
)
