package backend

import (
	"sync"
	"time"
)

// eventSink is the shared event pipe both backends publish through. Sends
// never block; when the consumer falls behind, events are dropped. It also
// owns the stall watchdog: a buffering spell that outlasts stallThreshold
// produces a Stalled event.
type eventSink struct {
	mu     sync.Mutex
	ch     chan Event
	stall  *time.Timer
	closed bool
}

func newEventSink() *eventSink {
	return &eventSink{ch: make(chan Event, eventBufferSize)}
}

func (s *eventSink) events() <-chan Event {
	return s.ch
}

func (s *eventSink) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	switch ev.(type) {
	case BufferingStarted:
		s.armStallLocked()
	case BufferingEnded, Ended, Failed:
		s.disarmStallLocked()
	}

	select {
	case s.ch <- ev:
	default:
		// Drop if buffer full
	}
}

func (s *eventSink) armStallLocked() {
	if s.stall != nil {
		return
	}
	s.stall = time.AfterFunc(stallThreshold, func() {
		s.emit(Stalled{})
	})
}

func (s *eventSink) disarmStallLocked() {
	if s.stall != nil {
		s.stall.Stop()
		s.stall = nil
	}
}

func (s *eventSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.disarmStallLocked()
	close(s.ch)
}
