package session

import (
	"github.com/ldevreaux/marquee/internal/media"
	"github.com/ldevreaux/marquee/internal/stream"
)

// NoCountdown marks an absent next-episode countdown.
const NoCountdown = -1

// Snapshot is the session state the UI reads. It is owned exclusively by
// the controller; everything else only reads copies of it or calls
// controller methods.
type Snapshot struct {
	Item     media.Item
	NextItem *media.Item

	Status    Status
	Buffering bool

	PositionMs int64
	DurationMs int64

	Volume float64
	Muted  bool
	Speed  float64

	Mode    stream.Mode
	Quality string

	// ActiveMarker is the marker containing the current position, if any.
	ActiveMarker *media.Marker
	// CountdownSec counts down to the next-episode auto-advance, or
	// NoCountdown.
	CountdownSec int

	// ErrMsg is the user-facing error after a terminal failure.
	ErrMsg string
}
