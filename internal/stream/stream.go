// Package stream decides how an item is delivered: the original file
// straight from the server, or a server-side HLS transcode.
package stream

import (
	"errors"
	"sync/atomic"
)

// Resolution-phase errors. The resolver never retries; the session
// controller owns retry and fallback policy.
var (
	// ErrResolutionFailed wraps gateway or network errors during resolution.
	ErrResolutionFailed = errors.New("stream resolution failed")
	// ErrNoServerAvailable means no Plex server is configured.
	ErrNoServerAvailable = errors.New("no plex server available")
	// ErrNoConnectionAvailable means the server has no usable connection.
	ErrNoConnectionAvailable = errors.New("no server connection available")
	// ErrInvalidStreamURL means the gateway returned an empty or malformed URL.
	ErrInvalidStreamURL = errors.New("invalid stream url")
)

// Mode is the delivery mode of a resolved stream.
type Mode string

const (
	ModeDirect       Mode = "direct"
	ModeTranscodeHLS Mode = "transcode-hls"
)

// Descriptor is the output of resolution: a playable URL plus what the
// session needs for teardown. A descriptor is session-scoped; once a new
// one is produced, the previous one's transcode session must be torn down
// exactly once.
type Descriptor struct {
	URL       string
	Mode      Mode
	SessionID string // set only for transcode mode

	// Retained only for transcode teardown, never exposed past the
	// session controller.
	ServerBase string
	Token      string

	stopped atomic.Bool
}

// IsTranscode reports whether the stream is a server-side transcode.
func (d *Descriptor) IsTranscode() bool {
	return d.Mode == ModeTranscodeHLS && d.SessionID != ""
}

// MarkStopped flips the one-shot teardown flag. It returns true exactly
// once, so a transcode stop is never issued twice for the same session.
func (d *Descriptor) MarkStopped() bool {
	return d.stopped.CompareAndSwap(false, true)
}
