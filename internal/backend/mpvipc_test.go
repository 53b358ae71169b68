package backend

import (
	"net"
	"testing"
)

func drainEvents(t *testing.T, m *MPV, msgs []ipcMessage) []Event {
	t.Helper()
	var out []Event
	for _, msg := range msgs {
		out = append(out, m.mapMessage(msg)...)
	}
	return out
}

func TestMPV_MapMessage_Lifecycle(t *testing.T) {
	m := &MPV{}

	events := drainEvents(t, m, []ipcMessage{
		{Event: "file-loaded"},
		{Event: "property-change", Name: "duration", Data: 3600.0},
		{Event: "property-change", Name: "time-pos", Data: 125.5},
		{Event: "end-file", Reason: "eof"},
	})

	if len(events) != 4 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if _, ok := events[0].(Ready); !ok {
		t.Errorf("events[0] = %T, want Ready", events[0])
	}
	if d, ok := events[1].(DurationKnown); !ok || d.DurationMs != 3600000 {
		t.Errorf("events[1] = %+v, want DurationKnown 3600000", events[1])
	}
	if tu, ok := events[2].(TimeUpdate); !ok || tu.PositionMs != 125500 {
		t.Errorf("events[2] = %+v, want TimeUpdate 125500", events[2])
	}
	if _, ok := events[3].(Ended); !ok {
		t.Errorf("events[3] = %T, want Ended", events[3])
	}
}

func TestMPV_MapMessage_ErrorEndFile(t *testing.T) {
	m := &MPV{}

	events := drainEvents(t, m, []ipcMessage{
		{Event: "file-loaded"},
		{Event: "end-file", Reason: "error", Error: "loading failed"},
	})

	if len(events) != 2 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	f, ok := events[1].(Failed)
	if !ok || f.Reason != "loading failed" {
		t.Errorf("events[1] = %+v, want Failed(loading failed)", events[1])
	}
}

func TestMPV_MapMessage_EndFileBeforeLoadIgnored(t *testing.T) {
	m := &MPV{}

	// mpv emits end-file for aborted loads before any file-loaded; those
	// must not look like playback results.
	events := drainEvents(t, m, []ipcMessage{
		{Event: "end-file", Reason: "stop"},
		{Event: "end-file", Reason: "eof"},
	})
	if len(events) != 0 {
		t.Fatalf("got %d events before load: %+v", len(events), events)
	}
}

func TestMPV_MapMessage_StopReasonNotAnEvent(t *testing.T) {
	m := &MPV{}

	events := drainEvents(t, m, []ipcMessage{
		{Event: "file-loaded"},
		{Event: "end-file", Reason: "stop"},
	})
	if len(events) != 1 {
		t.Fatalf("got %d events, want only Ready: %+v", len(events), events)
	}
}

func TestMapPropertyChange_Buffering(t *testing.T) {
	start := mapPropertyChange(ipcMessage{Event: "property-change", Name: "paused-for-cache", Data: true})
	if len(start) != 1 {
		t.Fatalf("got %+v", start)
	}
	if _, ok := start[0].(BufferingStarted); !ok {
		t.Errorf("got %T, want BufferingStarted", start[0])
	}

	end := mapPropertyChange(ipcMessage{Event: "property-change", Name: "paused-for-cache", Data: false})
	if _, ok := end[0].(BufferingEnded); !ok {
		t.Errorf("got %T, want BufferingEnded", end[0])
	}
}

func TestDefaultSocketPath_UniquePerInstance(t *testing.T) {
	// Sessions overlap during quality changes and auto-advance: the old mpv
	// holds its socket through the shutdown grace while the new one binds.
	a := defaultSocketPath()
	b := defaultSocketPath()
	if a == b {
		t.Fatalf("consecutive socket paths identical: %q", a)
	}
}

// listenOver runs listen synchronously against a piped connection while the
// given script writes to the other end.
func listenOver(t *testing.T, m *MPV, script func(conn net.Conn)) {
	t.Helper()
	client, server := net.Pipe()
	m.conn = server
	done := make(chan struct{})
	go func() {
		defer close(done)
		script(client)
	}()
	m.listen()
	<-done
}

func TestMPV_ListenEmitsFailedWhenProcessDies(t *testing.T) {
	m := &MPV{sink: newEventSink()}

	listenOver(t, m, func(conn net.Conn) {
		_, _ = conn.Write([]byte(`{"event":"file-loaded"}` + "\n"))
		_ = conn.Close() // mpv crashed, socket gone
	})

	events := m.sink.events()
	if ev := <-events; ev != (Ready{}) {
		t.Fatalf("first event = %+v, want Ready", ev)
	}
	f, ok := (<-events).(Failed)
	if !ok || f.Reason != "mpv exited" {
		t.Fatalf("got %+v, want Failed(mpv exited)", f)
	}
}

func TestMPV_ListenSilentAfterShutdown(t *testing.T) {
	m := &MPV{sink: newEventSink()}
	m.closing.Store(true)

	listenOver(t, m, func(conn net.Conn) {
		_ = conn.Close()
	})

	select {
	case ev := <-m.sink.events():
		t.Fatalf("unexpected event after deliberate close: %+v", ev)
	default:
	}
}

func TestMapPropertyChange_NullDataIgnored(t *testing.T) {
	// mpv sends null time-pos/duration when idle.
	if got := mapPropertyChange(ipcMessage{Name: "time-pos", Data: nil}); got != nil {
		t.Errorf("null time-pos produced %+v", got)
	}
	if got := mapPropertyChange(ipcMessage{Name: "duration", Data: nil}); got != nil {
		t.Errorf("null duration produced %+v", got)
	}
}
