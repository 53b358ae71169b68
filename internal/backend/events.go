package backend

// Event is the tagged union carried on a backend's event channel. It is the
// only way playback state reaches the session controller.
type Event interface {
	isEvent()
}

// TimeUpdate reports the current playhead position.
type TimeUpdate struct {
	PositionMs int64
}

// DurationKnown reports the total duration once the engine has determined it.
type DurationKnown struct {
	DurationMs int64
}

// Ready signals the loaded stream can begin playing.
type Ready struct{}

// BufferingStarted signals the engine paused to fill its cache.
type BufferingStarted struct{}

// BufferingEnded signals the cache refilled and playback resumed.
type BufferingEnded struct{}

// Stalled signals a buffering spell outlasted the stall threshold.
type Stalled struct{}

// Ended signals natural end of the stream.
type Ended struct{}

// Failed signals the engine gave up on the current stream.
type Failed struct {
	Reason string
}

func (TimeUpdate) isEvent()       {}
func (DurationKnown) isEvent()    {}
func (Ready) isEvent()            {}
func (BufferingStarted) isEvent() {}
func (BufferingEnded) isEvent()   {}
func (Stalled) isEvent()          {}
func (Ended) isEvent()            {}
func (Failed) isEvent()           {}
