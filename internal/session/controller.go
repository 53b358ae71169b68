// Package session runs the playback state machine. One controller serves
// the whole app lifetime; each Start begins a new session for one item, and
// a generation counter fences events from superseded backend instances.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ldevreaux/marquee/internal/backend"
	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/plex"
	"github.com/ldevreaux/marquee/internal/report"
	"github.com/ldevreaux/marquee/internal/stream"
)

const (
	directCacheSecs    = 10
	transcodeCacheSecs = 45
	stallCacheBumpSecs = 15

	// markerSkipPadMs lands the skip just past the marker end so the
	// marker does not immediately re-activate.
	markerSkipPadMs = 1000

	reportTimeout = 5 * time.Second
)

// Resolver produces playable stream descriptors.
type Resolver interface {
	Resolve(ctx context.Context, item media.Item, caps backend.Capabilities) (*stream.Descriptor, error)
	ResolveTranscode(ctx context.Context, item media.Item, caps backend.Capabilities, maxBitrateKbps int) (*stream.Descriptor, error)
}

// Gateway is the slice of the metadata gateway the controller consumes.
type Gateway interface {
	Metadata(ctx context.Context, ratingKey string) (*plex.Metadata, error)
	Markers(ctx context.Context, ratingKey string) ([]media.Marker, error)
	NextEpisode(ctx context.Context, item media.Item) (*media.Item, error)
}

// TranscodeStopper tears down server-side transcode sessions.
type TranscodeStopper interface {
	Stop(serverBase, sessionID, token string)
}

// Reporter delivers progress, stop, and watched marks.
type Reporter interface {
	Reset()
	Progress(ctx context.Context, item media.Item, positionMs, durationMs int64, playState plex.PlayState) bool
	Stopped(ctx context.Context, item media.Item, positionMs, durationMs int64)
	Watched(ctx context.Context, item media.Item)
}

// BackendFactory constructs a fresh playback engine instance. Every session
// and every quality change gets its own instance.
type BackendFactory func() (backend.Player, error)

// Config wires the controller's collaborators.
type Config struct {
	Resolver   Resolver
	Gateway    Gateway
	Transcoder TranscodeStopper
	Reporter   Reporter
	NewBackend BackendFactory

	// Initial user settings, restored from persisted state.
	Quality string
	Volume  float64
	Muted   bool
}

// Controller is the playback session state machine. All mutation happens
// under one mutex; backend events, timers, and user commands converge here.
type Controller struct {
	cfg Config

	mu   sync.Mutex
	snap Snapshot
	subs []*Subscription

	player backend.Player
	desc   *stream.Descriptor
	// generation identifies the backend instance events belong to. Events
	// tagged with a stale generation are discarded, which makes quality
	// changes and session replacement race-free without joins.
	generation int

	ctx    context.Context
	cancel context.CancelFunc

	markers        []media.Marker
	serverOffsetMs int64
	seeked         bool
	pendingSeekMs  int64
	fallbackUsed   bool
	autoAdvanced   bool
	cacheSecs      int
	quality        Quality
	tornDown       bool
}

// New creates an idle controller.
func New(cfg Config) *Controller {
	if cfg.Volume <= 0 {
		cfg.Volume = 1
	}
	q := QualityByLabel(cfg.Quality)
	return &Controller{
		cfg:     cfg,
		quality: q,
		snap: Snapshot{
			Status:       StatusIdle,
			Volume:       cfg.Volume,
			Muted:        cfg.Muted,
			Speed:        1,
			Quality:      q.Label,
			CountdownSec: NoCountdown,
		},
		pendingSeekMs: -1,
		tornDown:      true,
	}
}

// Subscribe registers a state consumer.
func (c *Controller) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *Controller) publishLocked() {
	for _, s := range c.subs {
		s.sendSnapshot(c.snap)
	}
}

// Start begins playback of an item, ending any session in progress.
func (c *Controller) Start(item media.Item) {
	c.mu.Lock()
	c.teardownLocked(StatusEnded, "")

	ctx, cancel := context.WithCancel(context.Background())
	c.ctx, c.cancel = ctx, cancel
	c.tornDown = false
	c.seeked = false
	c.fallbackUsed = false
	c.autoAdvanced = false
	c.pendingSeekMs = -1
	c.markers = nil
	c.serverOffsetMs = 0
	c.desc = nil
	c.snap = Snapshot{
		Item:         item,
		Status:       StatusResolving,
		DurationMs:   item.DurationMs,
		Volume:       c.snap.Volume,
		Muted:        c.snap.Muted,
		Speed:        c.snap.Speed,
		Quality:      c.quality.Label,
		CountdownSec: NoCountdown,
	}
	c.cfg.Reporter.Reset()
	c.publishLocked()
	quality := c.quality
	c.mu.Unlock()

	// Markers, next episode, and the fresh server offset are nice-to-have
	// context; none of them may delay first frame.
	go c.fetchMarkers(ctx, item)
	go c.fetchNext(ctx, item)
	go c.fetchServerOffset(ctx, item)
	go c.openSession(ctx, item, quality, -1)
	go c.progressLoop(ctx)
}

// openSession builds a backend instance, resolves the stream, and loads it.
// seekMs >= 0 requests a position restore once the stream is ready.
func (c *Controller) openSession(ctx context.Context, item media.Item, q Quality, seekMs int64) {
	player, err := c.cfg.NewBackend()
	if err != nil {
		c.failSession(ctx, fmt.Sprintf("start playback engine: %v", err))
		return
	}

	var desc *stream.Descriptor
	if q.Direct {
		desc, err = c.cfg.Resolver.Resolve(ctx, item, player.Caps())
	} else {
		desc, err = c.cfg.Resolver.ResolveTranscode(ctx, item, player.Caps(), q.MaxBitrateKbps)
	}
	if err != nil {
		player.Shutdown()
		c.failSession(ctx, err.Error())
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil || c.tornDown {
		c.mu.Unlock()
		player.Shutdown()
		c.stopTranscode(desc)
		return
	}
	c.generation++
	gen := c.generation
	c.player = player
	c.desc = desc
	if seekMs >= 0 {
		c.pendingSeekMs = seekMs
	}
	c.cacheSecs = directCacheSecs
	if desc.Mode == stream.ModeTranscodeHLS {
		c.cacheSecs = transcodeCacheSecs
	}
	cache := c.cacheSecs
	c.snap.Status = StatusLoading
	c.snap.Mode = desc.Mode
	c.publishLocked()
	c.mu.Unlock()

	go c.pump(ctx, player, gen)

	if err := player.SetCacheSecs(cache); err != nil {
		logrus.WithError(err).Warn("set cache size")
	}
	if err := player.Load(desc.URL); err != nil {
		c.handleEvent(ctx, gen, backend.Failed{Reason: fmt.Sprintf("load stream: %v", err)})
	}
}

func (c *Controller) failSession(ctx context.Context, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || c.tornDown {
		return
	}
	c.teardownLocked(StatusFailed, msg)
}

func (c *Controller) fetchMarkers(ctx context.Context, item media.Item) {
	markers, err := c.cfg.Gateway.Markers(ctx, item.RatingKey)
	if err != nil {
		logrus.WithError(err).WithField("ratingKey", item.RatingKey).Debug("fetch markers")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.markers = markers
}

func (c *Controller) fetchNext(ctx context.Context, item media.Item) {
	next, err := c.cfg.Gateway.NextEpisode(ctx, item)
	if err != nil {
		logrus.WithError(err).WithField("ratingKey", item.RatingKey).Debug("fetch next episode")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || next == nil {
		return
	}
	c.snap.NextItem = next
	c.publishLocked()
}

// fetchServerOffset refreshes the server-side view offset, which may be
// newer than the one carried by the item when another client played it.
func (c *Controller) fetchServerOffset(ctx context.Context, item media.Item) {
	md, err := c.cfg.Gateway.Metadata(ctx, item.RatingKey)
	if err != nil {
		logrus.WithError(err).WithField("ratingKey", item.RatingKey).Debug("fetch server offset")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.serverOffsetMs = md.Item().ViewOffsetMs
}

func (c *Controller) pump(ctx context.Context, p backend.Player, gen int) {
	for ev := range p.Events() {
		c.handleEvent(ctx, gen, ev)
	}
}

func (c *Controller) handleEvent(ctx context.Context, gen int, ev backend.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.tornDown {
		return
	}

	switch e := ev.(type) {
	case backend.Ready:
		c.onReadyLocked()
	case backend.DurationKnown:
		c.snap.DurationMs = e.DurationMs
		c.publishLocked()
	case backend.TimeUpdate:
		c.onTimeLocked(e.PositionMs)
	case backend.BufferingStarted:
		c.snap.Buffering = true
		c.publishLocked()
	case backend.BufferingEnded:
		c.snap.Buffering = false
		c.publishLocked()
	case backend.Stalled:
		c.onStalledLocked()
	case backend.Ended:
		c.onEndedLocked()
	case backend.Failed:
		c.onFailedLocked(ctx, e.Reason)
	}
}

// onReadyLocked applies user settings and the one-time initial seek, then
// starts playback. Reloads of the same instance carry their position in
// pendingSeekMs; the resume policy itself is spent after the first Ready of
// the session.
func (c *Controller) onReadyLocked() {
	p := c.player
	if p == nil {
		return
	}
	if err := p.SetVolume(c.snap.Volume); err != nil {
		logrus.WithError(err).Warn("apply volume")
	}
	_ = p.SetMuted(c.snap.Muted)
	if c.snap.Speed != 1 {
		_ = p.SetSpeed(c.snap.Speed)
	}

	target := int64(-1)
	if c.pendingSeekMs >= 0 {
		target = c.pendingSeekMs
		c.pendingSeekMs = -1
	} else if !c.seeked {
		target = resumePositionMs(c.snap.Item.ViewOffsetMs, c.serverOffsetMs, c.snap.DurationMs)
	}
	c.seeked = true
	if target > 0 {
		if err := p.Seek(target); err != nil {
			logrus.WithError(err).Warn("initial seek")
		} else {
			c.snap.PositionMs = target
		}
	}

	if err := p.Play(); err != nil {
		logrus.WithError(err).Warn("start playback")
	}
	c.snap.Status = StatusPlaying
	c.snap.Buffering = false
	c.publishLocked()
}

func (c *Controller) onTimeLocked(positionMs int64) {
	c.snap.PositionMs = positionMs
	c.snap.ActiveMarker = media.ActiveMarker(c.markers, positionMs)
	c.snap.CountdownSec = countdownSecs(
		c.snap.Item.IsEpisode(), c.snap.NextItem != nil,
		c.markers, positionMs, c.snap.DurationMs,
	)
	if c.snap.CountdownSec == 0 && c.snap.NextItem != nil && !c.autoAdvanced {
		c.autoAdvanced = true
		next := *c.snap.NextItem
		go c.advance(next, true)
	}
	c.publishLocked()
}

// onStalledLocked reacts to a prolonged buffering spell: grow the cache and
// nudge the engine with a pause/resume cycle to restart segment fetching.
func (c *Controller) onStalledLocked() {
	c.cacheSecs += stallCacheBumpSecs
	cache := c.cacheSecs
	playing := c.snap.Status == StatusPlaying
	p := c.player
	logrus.WithField("cacheSecs", cache).Warn("playback stalled, raising cache")
	if p == nil {
		return
	}
	go func() {
		_ = p.SetCacheSecs(cache)
		if playing {
			_ = p.Pause()
			_ = p.Play()
		}
	}()
}

func (c *Controller) onEndedLocked() {
	item := c.snap.Item
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		c.cfg.Reporter.Watched(ctx, item)
	}()

	if item.IsEpisode() && c.snap.NextItem != nil && !c.autoAdvanced {
		c.autoAdvanced = true
		next := *c.snap.NextItem
		go c.advance(next, false)
		return
	}
	c.teardownLocked(StatusEnded, "")
}

// onFailedLocked spends the one direct-play fallback if available, otherwise
// ends the session in Failed.
func (c *Controller) onFailedLocked(ctx context.Context, reason string) {
	if c.snap.Mode == stream.ModeDirect && !c.fallbackUsed && c.player != nil {
		c.fallbackUsed = true
		c.pendingSeekMs = c.snap.PositionMs
		c.snap.Status = StatusLoading
		c.snap.Buffering = false
		logrus.WithField("reason", reason).Warn("direct play failed, falling back to transcode")
		c.publishLocked()
		go c.reloadTranscode(ctx, c.player, c.generation, c.snap.Item, c.quality)
		return
	}
	c.teardownLocked(StatusFailed, reason)
}

// reloadTranscode resolves a transcode stream and loads it into the same
// backend instance. The generation stays unchanged so the instance's event
// stream keeps flowing into the session.
func (c *Controller) reloadTranscode(ctx context.Context, p backend.Player, gen int, item media.Item, q Quality) {
	desc, err := c.cfg.Resolver.ResolveTranscode(ctx, item, p.Caps(), q.MaxBitrateKbps)
	if err != nil {
		c.mu.Lock()
		if gen == c.generation && !c.tornDown {
			c.teardownLocked(StatusFailed, err.Error())
		}
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	if gen != c.generation || c.tornDown {
		c.mu.Unlock()
		c.stopTranscode(desc)
		return
	}
	c.desc = desc
	c.snap.Mode = desc.Mode
	c.cacheSecs = transcodeCacheSecs
	c.publishLocked()
	c.mu.Unlock()

	_ = p.SetCacheSecs(transcodeCacheSecs)
	if err := p.Load(desc.URL); err != nil {
		c.mu.Lock()
		if gen == c.generation && !c.tornDown {
			c.teardownLocked(StatusFailed, fmt.Sprintf("load transcode stream: %v", err))
		}
		c.mu.Unlock()
	}
}

// advance replaces the current session with the next episode. watched marks
// the outgoing item fully viewed first.
func (c *Controller) advance(next media.Item, watched bool) {
	if watched {
		c.mu.Lock()
		item := c.snap.Item
		c.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		c.cfg.Reporter.Watched(ctx, item)
		cancel()
	}

	c.Start(next)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subs {
		s.sendItem(next)
	}
}

// TogglePlayPause flips between playing and paused.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.player
	switch c.snap.Status {
	case StatusPlaying:
		if p != nil {
			_ = p.Pause()
		}
		c.snap.Status = StatusPaused
	case StatusPaused:
		if p != nil {
			_ = p.Play()
		}
		c.snap.Status = StatusPlaying
	default:
		return
	}
	c.publishLocked()
}

// SeekTo moves the playhead to an absolute position, clamped to the
// timeline.
func (c *Controller) SeekTo(positionMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == nil || !c.snap.Status.IsActive() {
		return
	}
	target := clampPositionMs(positionMs, c.snap.DurationMs)
	if err := c.player.Seek(target); err != nil {
		logrus.WithError(err).Warn("seek")
		return
	}
	c.snap.PositionMs = target
	c.publishLocked()
}

// Skip moves the playhead relative to the current position.
func (c *Controller) Skip(deltaSec int) {
	c.mu.Lock()
	pos := c.snap.PositionMs
	c.mu.Unlock()
	c.SeekTo(pos + int64(deltaSec)*1000)
}

// SkipActiveMarker jumps just past the end of the marker containing the
// current position. No-op when the playhead is outside every marker.
func (c *Controller) SkipActiveMarker() {
	c.mu.Lock()
	m := c.snap.ActiveMarker
	c.mu.Unlock()
	if m == nil {
		return
	}
	c.SeekTo(m.EndMs + markerSkipPadMs)
}

// SetVolume sets the playback volume in 0..1.
func (c *Controller) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Volume = v
	if c.player != nil {
		_ = c.player.SetVolume(v)
	}
	c.publishLocked()
}

// ToggleMute flips the mute flag.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Muted = !c.snap.Muted
	if c.player != nil {
		_ = c.player.SetMuted(c.snap.Muted)
	}
	c.publishLocked()
}

// SetSpeed sets the playback speed multiplier.
func (c *Controller) SetSpeed(multiplier float64) {
	if multiplier <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Speed = multiplier
	if c.player != nil {
		_ = c.player.SetSpeed(multiplier)
	}
	c.publishLocked()
}

// ChangeQuality switches the delivery preset. An active session is rebuilt
// on a fresh backend instance at the current position; the old instance and
// its transcode session are torn down concurrently.
func (c *Controller) ChangeQuality(label string) {
	c.mu.Lock()
	q := QualityByLabel(label)
	if q.Label == c.quality.Label {
		c.mu.Unlock()
		return
	}
	c.quality = q
	c.snap.Quality = q.Label
	if c.tornDown || !c.snap.Status.IsActive() {
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	oldPlayer, oldDesc := c.player, c.desc
	c.player, c.desc = nil, nil
	// Orphan the old instance's events before its replacement attaches.
	c.generation++
	pos := c.snap.PositionMs
	item := c.snap.Item
	ctx := c.ctx
	c.snap.Status = StatusLoading
	c.snap.Buffering = false
	c.publishLocked()
	c.mu.Unlock()

	c.stopTranscode(oldDesc)
	if oldPlayer != nil {
		go oldPlayer.Shutdown()
	}
	go c.openSession(ctx, item, q, pos)
}

// PlayNext jumps to the next episode. The outgoing item is marked watched
// only when the countdown window was already active.
func (c *Controller) PlayNext() {
	c.mu.Lock()
	next := c.snap.NextItem
	watched := c.snap.CountdownSec != NoCountdown
	c.mu.Unlock()
	if next == nil {
		return
	}
	c.advance(*next, watched)
}

// Stop ends the current session.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked(StatusEnded, "")
}

// Close ends the session and releases all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	c.teardownLocked(StatusEnded, "")
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}

// teardownLocked ends the session exactly once: a final stopped report, a
// transcode stop, and a backend shutdown, each at most once per session.
// Safe to call repeatedly.
func (c *Controller) teardownLocked(final Status, errMsg string) {
	if c.tornDown {
		return
	}
	c.tornDown = true
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++

	if c.snap.Status.IsActive() {
		item := c.snap.Item
		pos, dur := c.snap.PositionMs, c.snap.DurationMs
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
			defer cancel()
			c.cfg.Reporter.Stopped(ctx, item, pos, dur)
		}()
	}

	c.stopTranscode(c.desc)
	if p := c.player; p != nil {
		go p.Shutdown()
		c.player = nil
	}

	c.snap.Status = final
	c.snap.Buffering = false
	c.snap.ActiveMarker = nil
	c.snap.CountdownSec = NoCountdown
	c.snap.ErrMsg = errMsg
	c.publishLocked()
}

func (c *Controller) stopTranscode(desc *stream.Descriptor) {
	if desc == nil || !desc.IsTranscode() || !desc.MarkStopped() {
		return
	}
	go c.cfg.Transcoder.Stop(desc.ServerBase, desc.SessionID, desc.Token)
}

// progressLoop reports the playhead every reporting interval while the
// session lives. The reporter coalesces redundant sends.
func (c *Controller) progressLoop(ctx context.Context) {
	ticker := time.NewTicker(report.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		item := c.snap.Item
		pos, dur := c.snap.PositionMs, c.snap.DurationMs
		var ps plex.PlayState
		switch c.snap.Status {
		case StatusPlaying:
			ps = plex.StatePlaying
		case StatusPaused:
			ps = plex.StatePaused
		default:
			c.mu.Unlock()
			continue
		}
		c.mu.Unlock()

		rctx, cancel := context.WithTimeout(ctx, reportTimeout)
		c.cfg.Reporter.Progress(rctx, item, pos, dur, ps)
		cancel()
	}
}
