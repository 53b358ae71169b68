package session

// Status is the playback session state machine position.
//
// Valid transitions:
//
//	Idle → Resolving          (session start)
//	Resolving → Loading       (descriptor obtained, backend load issued)
//	Resolving → Failed        (resolution error)
//	Loading → Playing         (backend ready)
//	Loading → Loading         (direct-play fallback, once per session)
//	Loading → Failed          (load failure after fallback was spent)
//	Playing ⇄ Paused          (user toggle)
//	any → Ended               (natural end, explicit stop, replacement)
//
// Buffering is an overlay flag on the snapshot, not a state: it can start
// and stop independently of play/pause intent.
type Status int

const (
	StatusIdle Status = iota
	StatusResolving
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusEnded
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusResolving:
		return "Resolving"
	case StatusLoading:
		return "Loading"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusEnded:
		return "Ended"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsActive returns true while a stream is loaded or being prepared.
func (s Status) IsActive() bool {
	switch s {
	case StatusResolving, StatusLoading, StatusPlaying, StatusPaused:
		return true
	default:
		return false
	}
}
