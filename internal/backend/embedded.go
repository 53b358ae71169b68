package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/go-mpv"
	"github.com/sirupsen/logrus"
)

// Embedded runs libmpv in-process. Unlike the external player it pushes
// property-change and discrete-event callbacks through the libmpv event
// queue, and renders through whatever video output libmpv selects.
type Embedded struct {
	mpv      *mpv.Mpv
	sink     *eventSink
	caps     Capabilities
	pumpDone chan struct{} // closed when the event pump has stopped

	shutOnce sync.Once
	loaded   bool
}

// NewEmbedded initializes libmpv and starts the event pump.
func NewEmbedded() (*Embedded, error) {
	m := mpv.New()

	_ = m.SetOptionString("vo", "gpu")
	_ = m.SetOptionString("idle", "yes")
	_ = m.SetOptionString("keep-open", "no")
	_ = m.SetOptionString("force-window", "yes")
	_ = m.SetOptionString("input-default-bindings", "no")

	if err := m.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize libmpv: %w", err)
	}

	e := &Embedded{
		mpv:      m,
		sink:     newEventSink(),
		caps:     embeddedCapabilities(),
		pumpDone: make(chan struct{}),
	}

	observations := []struct {
		id     uint64
		name   string
		format mpv.Format
	}{
		{obsTimePos, "time-pos", mpv.FormatDouble},
		{obsDuration, "duration", mpv.FormatDouble},
		{obsPausedForCache, "paused-for-cache", mpv.FormatFlag},
	}
	for _, obs := range observations {
		if err := m.ObserveProperty(obs.id, obs.name, obs.format); err != nil {
			m.TerminateDestroy()
			return nil, fmt.Errorf("observe %s: %w", obs.name, err)
		}
	}

	go e.pump()
	return e, nil
}

// pump drains the libmpv event queue until shutdown.
func (e *Embedded) pump() {
	defer close(e.pumpDone)
	for {
		ev := e.mpv.WaitEvent(1)
		if ev == nil {
			continue
		}
		switch ev.EventID {
		case mpv.EventShutdown:
			return
		case mpv.EventPropertyChange:
			prop := ev.Property()
			for _, out := range mapEmbeddedProperty(prop.Name, prop.Data) {
				e.sink.emit(out)
			}
		case mpv.EventFileLoaded:
			e.loaded = true
			e.sink.emit(Ready{})
		case mpv.EventEnd:
			if !e.loaded {
				continue
			}
			e.loaded = false
			ef := ev.EndFile()
			switch ef.Reason {
			case mpv.EndFileEOF:
				e.sink.emit(Ended{})
			case mpv.EndFileError:
				e.sink.emit(Failed{Reason: fmt.Sprintf("libmpv: %v", ef.Error)})
			}
			// stop/quit reasons are controller-initiated.
		}
	}
}

// mapEmbeddedProperty mirrors the IPC property mapping for libmpv data.
func mapEmbeddedProperty(name string, data any) []Event {
	switch name {
	case "time-pos":
		if secs, ok := data.(float64); ok {
			return []Event{TimeUpdate{PositionMs: int64(secs * 1000)}}
		}
	case "duration":
		if secs, ok := data.(float64); ok && secs > 0 {
			return []Event{DurationKnown{DurationMs: int64(secs * 1000)}}
		}
	case "paused-for-cache":
		if buffering, ok := data.(bool); ok {
			if buffering {
				return []Event{BufferingStarted{}}
			}
			return []Event{BufferingEnded{}}
		}
	}
	return nil
}

// Load replaces the current stream.
func (e *Embedded) Load(url string) error {
	return e.mpv.Command([]string{"loadfile", url, "replace"})
}

// Play resumes playback.
func (e *Embedded) Play() error {
	return e.mpv.SetProperty("pause", mpv.FormatFlag, false)
}

// Pause pauses playback.
func (e *Embedded) Pause() error {
	return e.mpv.SetProperty("pause", mpv.FormatFlag, true)
}

// Seek jumps to an absolute position.
func (e *Embedded) Seek(positionMs int64) error {
	return e.mpv.SetProperty("time-pos", mpv.FormatDouble, float64(positionMs)/1000)
}

// SetVolume sets the volume from 0..1 (libmpv uses 0..100).
func (e *Embedded) SetVolume(v float64) error {
	return e.mpv.SetProperty("volume", mpv.FormatDouble, clampUnit(v)*100)
}

// SetMuted toggles mute.
func (e *Embedded) SetMuted(muted bool) error {
	return e.mpv.SetProperty("mute", mpv.FormatFlag, muted)
}

// SetSpeed sets the playback rate multiplier.
func (e *Embedded) SetSpeed(multiplier float64) error {
	return e.mpv.SetProperty("speed", mpv.FormatDouble, multiplier)
}

// SetCacheSecs sets the demuxer read-ahead in seconds.
func (e *Embedded) SetCacheSecs(secs int) error {
	return e.mpv.SetProperty("cache-secs", mpv.FormatInt64, int64(secs))
}

// Shutdown tears libmpv down. Safe to call more than once. The handle must
// not be destroyed while pump is inside WaitEvent, so quit is issued first
// and the pump's exit is awaited before TerminateDestroy.
func (e *Embedded) Shutdown() {
	e.shutOnce.Do(func() {
		if err := e.mpv.Command([]string{"quit"}); err != nil {
			logrus.WithError(err).Debug("libmpv quit command failed")
		}
		if !awaitPumpStop(e.pumpDone, 5*time.Second) {
			logrus.Warn("libmpv event pump did not stop, destroying anyway")
		}
		e.mpv.TerminateDestroy()
		e.sink.close()
	})
}

// awaitPumpStop blocks until the event pump exits or the grace period
// elapses. Returns false on timeout.
func awaitPumpStop(done <-chan struct{}, grace time.Duration) bool {
	select {
	case <-done:
		return true
	case <-time.After(grace):
		return false
	}
}

// Events returns the backend event stream.
func (e *Embedded) Events() <-chan Event {
	return e.sink.events()
}

// Caps returns the variant's declared capabilities.
func (e *Embedded) Caps() Capabilities {
	return e.caps
}
