// Package report delivers playhead progress, stop, and watched marks to the
// gateway. Every call is best-effort telemetry: failures are logged and
// swallowed, never surfaced, and never block playback.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/state"
)

const (
	// Interval is the progress timer period.
	Interval = 10 * time.Second

	// minDeltaMs coalesces redundant reports: progress is only sent once
	// the playhead moved more than this since the last successful report.
	minDeltaMs = 5000

	// maxRetryAttempts caps pending scrobble retries.
	maxRetryAttempts = 10
)

// Gateway is the slice of the metadata gateway the reporter consumes.
type Gateway interface {
	Progress(ctx context.Context, ratingKey string, timeMs, durationMs int64, playState plex.PlayState) error
	Scrobble(ctx context.Context, ratingKey string) error
}

// PendingStore queues watched-marks that failed to reach the gateway.
type PendingStore interface {
	QueuePendingScrobble(ratingKey string) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	UpdatePendingScrobbleAttempt(id int64, lastError string) error
	DeletePendingScrobble(id int64) error
}

// Reporter tracks the last successfully reported position per session and
// coalesces progress calls. One Reporter serves one playback session; Reset
// starts tracking over for the next.
type Reporter struct {
	gateway Gateway
	pending PendingStore // may be nil

	mu           sync.Mutex
	lastReported int64
}

// New creates a reporter. pending may be nil when no retry queue exists.
func New(gateway Gateway, pending PendingStore) *Reporter {
	return &Reporter{gateway: gateway, pending: pending}
}

// Reset clears the coalescing baseline for a new session.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastReported = 0
}

// Progress reports the playhead if both position and duration are known and
// the position moved more than 5 seconds since the last successful report.
// Returns whether a report was sent.
func (r *Reporter) Progress(ctx context.Context, item media.Item, positionMs, durationMs int64, playState plex.PlayState) bool {
	if positionMs <= 0 && durationMs <= 0 {
		return false
	}
	if durationMs <= 0 {
		return false
	}

	// The baseline starts at 0, so playback from the beginning stays quiet
	// until the playhead has moved past the coalescing window.
	r.mu.Lock()
	delta := positionMs - r.lastReported
	if delta < 0 {
		delta = -delta
	}
	if delta <= minDeltaMs {
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	if err := r.gateway.Progress(ctx, item.RatingKey, positionMs, durationMs, playState); err != nil {
		logrus.WithError(err).WithField("ratingKey", item.RatingKey).Warn("progress report failed")
		return false
	}

	r.mu.Lock()
	r.lastReported = positionMs
	r.mu.Unlock()
	return true
}

// Stopped sends the terminal stopped report. Unconditional and best-effort.
func (r *Reporter) Stopped(ctx context.Context, item media.Item, positionMs, durationMs int64) {
	if err := r.gateway.Progress(ctx, item.RatingKey, positionMs, durationMs, plex.StateStopped); err != nil {
		logrus.WithError(err).WithField("ratingKey", item.RatingKey).Warn("stopped report failed")
	}
}

// Watched marks the item fully viewed after natural completion. A failed
// scrobble is queued for retry when a pending store is configured.
func (r *Reporter) Watched(ctx context.Context, item media.Item) {
	err := r.gateway.Scrobble(ctx, item.RatingKey)
	if err == nil {
		return
	}
	logrus.WithError(err).WithField("ratingKey", item.RatingKey).Warn("scrobble failed")

	if r.pending == nil {
		return
	}
	if qerr := r.pending.QueuePendingScrobble(item.RatingKey); qerr != nil {
		logrus.WithError(qerr).Warn("queue pending scrobble")
	}
}

// RetryPending replays queued scrobbles, dropping entries that exceeded the
// attempt cap. Called once at startup.
func (r *Reporter) RetryPending(ctx context.Context) (succeeded, failed int) {
	if r.pending == nil {
		return 0, 0
	}

	pending, err := r.pending.GetPendingScrobbles()
	if err != nil {
		logrus.WithError(err).Warn("load pending scrobbles")
		return 0, 0
	}

	for _, p := range pending {
		if p.Attempts >= maxRetryAttempts {
			_ = r.pending.DeletePendingScrobble(p.ID)
			continue
		}
		if err := r.gateway.Scrobble(ctx, p.RatingKey); err != nil {
			failed++
			_ = r.pending.UpdatePendingScrobbleAttempt(p.ID, err.Error())
			continue
		}
		succeeded++
		_ = r.pending.DeletePendingScrobble(p.ID)
	}
	return succeeded, failed
}
