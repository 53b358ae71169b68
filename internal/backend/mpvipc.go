package backend

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Property observation IDs for the IPC session.
const (
	obsTimePos        = 1
	obsDuration       = 2
	obsPausedForCache = 3
)

// MPV drives an external mpv process over its JSON IPC socket. mpv renders
// into its own window; this process only sends commands and consumes
// property-change and end-file notifications.
type MPV struct {
	cmd    *exec.Cmd
	conn   net.Conn
	sink   *eventSink
	caps   Capabilities
	waitCh chan struct{} // closed once the mpv process has been reaped

	writeMu  sync.Mutex
	shutOnce sync.Once
	closing  atomic.Bool

	loaded bool // a file has been loaded at least once
}

// Verify both backends implement Player at compile time.
var (
	_ Player = (*MPV)(nil)
	_ Player = (*Embedded)(nil)
)

// NewMPV launches mpv with an IPC socket and connects to it.
func NewMPV(opts Options) (*MPV, error) {
	bin := opts.MPVPath
	if bin == "" {
		bin = "mpv"
	}
	socket := opts.SocketPath
	if socket == "" {
		socket = defaultSocketPath()
	}

	cmd := exec.Command(bin,
		"--input-ipc-server="+socket,
		"--idle=yes",
		"--keep-open=no",
		"--force-window=yes",
		"--no-terminal",
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}
	waitCh := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(waitCh)
	}()

	conn, err := dialWithRetry(socket)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	m := &MPV{
		cmd:    cmd,
		conn:   conn,
		sink:   newEventSink(),
		caps:   mpvCapabilities(),
		waitCh: waitCh,
	}

	observations := [][]any{
		{"observe_property", obsTimePos, "time-pos"},
		{"observe_property", obsDuration, "duration"},
		{"observe_property", obsPausedForCache, "paused-for-cache"},
	}
	for _, obs := range observations {
		if err := m.send(obs...); err != nil {
			m.Shutdown()
			return nil, fmt.Errorf("observe properties: %w", err)
		}
	}

	go m.listen()
	return m, nil
}

// socketSeq distinguishes successive instances within one process. Sessions
// overlap during replacement: the superseded mpv holds its socket through the
// shutdown grace period, so the path must be unique per instance, not per pid.
var socketSeq atomic.Uint64

func defaultSocketPath() string {
	return filepath.Join(os.TempDir(),
		fmt.Sprintf("marquee-mpv-%d-%d.sock", os.Getpid(), socketSeq.Add(1)))
}

// dialWithRetry polls the socket while mpv starts up.
func dialWithRetry(socket string) (net.Conn, error) {
	var conn net.Conn
	var err error
	for range 20 {
		conn, err = net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil, fmt.Errorf("connect to mpv socket: %w", err)
}

func (m *MPV) send(args ...any) error {
	payload, err := json.Marshal(map[string]any{"command": args})
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if _, err := m.conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// ipcMessage is the union of event and response lines mpv writes on the
// socket. Response lines (RequestID set) are ignored; commands are
// fire-and-forget like the controller that consumes them.
type ipcMessage struct {
	Event     string `json:"event"`
	Name      string `json:"name"`
	ID        int    `json:"id"`
	Data      any    `json:"data"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
	RequestID int    `json:"request_id"`
}

func (m *MPV) listen() {
	decoder := json.NewDecoder(m.conn)
	for {
		var msg ipcMessage
		if err := decoder.Decode(&msg); err != nil {
			if m.closing.Load() {
				// Deliberate Shutdown closed the socket.
				logrus.WithError(err).Debug("mpv ipc connection closed")
				return
			}
			// mpv died underneath us; the controller learns about engine
			// death only through the event stream.
			logrus.WithError(err).Warn("mpv exited unexpectedly")
			m.sink.emit(Failed{Reason: "mpv exited"})
			return
		}
		for _, ev := range m.mapMessage(msg) {
			m.sink.emit(ev)
		}
	}
}

// mapMessage translates one IPC line into backend events.
func (m *MPV) mapMessage(msg ipcMessage) []Event {
	switch msg.Event {
	case "property-change":
		return mapPropertyChange(msg)
	case "file-loaded":
		m.loaded = true
		return []Event{Ready{}}
	case "end-file":
		if !m.loaded {
			return nil
		}
		m.loaded = false
		if msg.Reason == "error" {
			reason := msg.Error
			if reason == "" {
				reason = "playback aborted"
			}
			return []Event{Failed{Reason: reason}}
		}
		if msg.Reason == "eof" {
			return []Event{Ended{}}
		}
		// stop/redirect reasons are controller-initiated, not events.
		return nil
	}
	return nil
}

func mapPropertyChange(msg ipcMessage) []Event {
	switch msg.Name {
	case "time-pos":
		if secs, ok := msg.Data.(float64); ok {
			return []Event{TimeUpdate{PositionMs: int64(secs * 1000)}}
		}
	case "duration":
		if secs, ok := msg.Data.(float64); ok && secs > 0 {
			return []Event{DurationKnown{DurationMs: int64(secs * 1000)}}
		}
	case "paused-for-cache":
		if buffering, ok := msg.Data.(bool); ok {
			if buffering {
				return []Event{BufferingStarted{}}
			}
			return []Event{BufferingEnded{}}
		}
	}
	return nil
}

// Load replaces the current stream.
func (m *MPV) Load(url string) error {
	return m.send("loadfile", url, "replace")
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.send("set_property", "pause", false)
}

// Pause pauses playback.
func (m *MPV) Pause() error {
	return m.send("set_property", "pause", true)
}

// Seek jumps to an absolute position.
func (m *MPV) Seek(positionMs int64) error {
	return m.send("seek", float64(positionMs)/1000, "absolute")
}

// SetVolume sets the volume from 0..1 (mpv uses 0..100).
func (m *MPV) SetVolume(v float64) error {
	return m.send("set_property", "volume", clampUnit(v)*100)
}

// SetMuted toggles mute.
func (m *MPV) SetMuted(muted bool) error {
	return m.send("set_property", "mute", muted)
}

// SetSpeed sets the playback rate multiplier.
func (m *MPV) SetSpeed(multiplier float64) error {
	return m.send("set_property", "speed", multiplier)
}

// SetCacheSecs sets the demuxer read-ahead in seconds.
func (m *MPV) SetCacheSecs(secs int) error {
	return m.send("set_property", "cache-secs", secs)
}

// Shutdown quits mpv and releases the socket. Safe to call more than once.
func (m *MPV) Shutdown() {
	m.shutOnce.Do(func() {
		m.closing.Store(true)
		_ = m.send("quit")
		_ = m.conn.Close()

		// Give mpv a moment to exit cleanly before killing it. The reaper
		// goroutine started at launch closes waitCh once the process is gone.
		select {
		case <-m.waitCh:
		case <-time.After(2 * time.Second):
			_ = m.cmd.Process.Kill()
			<-m.waitCh
		}

		m.sink.close()
	})
}

// Events returns the backend event stream.
func (m *MPV) Events() <-chan Event {
	return m.sink.events()
}

// Caps returns the variant's declared capabilities.
func (m *MPV) Caps() Capabilities {
	return m.caps
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
