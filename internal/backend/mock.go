package backend

import "sync"

// Mock is a test double for Player. Tests inject events with Emit and
// inspect recorded calls.
type Mock struct {
	mu sync.Mutex

	caps    Capabilities
	events  chan Event
	loadErr error
	closed  bool

	loadCalls     []string
	playCalls     int
	pauseCalls    int
	seekCalls     []int64
	volumeCalls   []float64
	mutedCalls    []bool
	speedCalls    []float64
	cacheCalls    []int
	shutdownCalls int
}

// NewMock creates a mock backend with the external-player capability set.
func NewMock() *Mock {
	return &Mock{
		caps:   mpvCapabilities(),
		events: make(chan Event, eventBufferSize),
	}
}

func (m *Mock) Load(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, url)
	return m.loadErr
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	return nil
}

func (m *Mock) Seek(positionMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, positionMs)
	return nil
}

func (m *Mock) SetVolume(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumeCalls = append(m.volumeCalls, v)
	return nil
}

func (m *Mock) SetMuted(muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutedCalls = append(m.mutedCalls, muted)
	return nil
}

func (m *Mock) SetSpeed(multiplier float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speedCalls = append(m.speedCalls, multiplier)
	return nil
}

func (m *Mock) SetCacheSecs(secs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheCalls = append(m.cacheCalls, secs)
	return nil
}

func (m *Mock) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownCalls++
	if !m.closed {
		m.closed = true
		close(m.events)
	}
}

func (m *Mock) Events() <-chan Event {
	return m.events
}

func (m *Mock) Caps() Capabilities {
	return m.caps
}

// Test helpers

// Emit injects an event as if the engine produced it.
func (m *Mock) Emit(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.events <- ev:
	default:
	}
}

// SetCaps overrides the declared capabilities.
func (m *Mock) SetCaps(caps Capabilities) { m.caps = caps }

// SetLoadError makes subsequent Load calls fail.
func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) SeekCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.seekCalls...)
}

func (m *Mock) CacheCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.cacheCalls...)
}

func (m *Mock) ShutdownCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdownCalls
}

// EmbeddedCaps returns the embedded-engine capability set for tests.
func EmbeddedCaps() Capabilities { return embeddedCapabilities() }

// MPVCaps returns the external-player capability set for tests.
func MPVCaps() Capabilities { return mpvCapabilities() }

// Verify Mock implements Player at compile time.
var _ Player = (*Mock)(nil)
