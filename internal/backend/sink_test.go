package backend

import (
	"testing"
	"testing/synctest"
	"time"
)

func collect(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestEventSink_StallAfterProlongedBuffering(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newEventSink()
		s.emit(BufferingStarted{})

		time.Sleep(stallThreshold + time.Second)
		synctest.Wait()

		events := collect(s.events())
		if len(events) != 2 {
			t.Fatalf("got %d events: %+v", len(events), events)
		}
		if _, ok := events[1].(Stalled); !ok {
			t.Errorf("events[1] = %T, want Stalled", events[1])
		}
	})
}

func TestEventSink_NoStallWhenBufferingEnds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newEventSink()
		s.emit(BufferingStarted{})
		time.Sleep(stallThreshold / 2)
		s.emit(BufferingEnded{})

		time.Sleep(stallThreshold * 2)
		synctest.Wait()

		for _, ev := range collect(s.events()) {
			if _, ok := ev.(Stalled); ok {
				t.Fatal("stall fired after buffering ended")
			}
		}
	})
}

func TestEventSink_CloseStopsEmission(t *testing.T) {
	s := newEventSink()
	s.emit(Ready{})
	s.close()
	s.close() // idempotent
	s.emit(TimeUpdate{PositionMs: 1}) // must not panic on closed channel

	events := collect(s.events())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
}

func TestEventSink_DropsWhenFull(t *testing.T) {
	s := newEventSink()
	for i := range eventBufferSize + 10 {
		s.emit(TimeUpdate{PositionMs: int64(i)})
	}
	events := collect(s.events())
	if len(events) != eventBufferSize {
		t.Fatalf("got %d events, want %d", len(events), eventBufferSize)
	}
}
