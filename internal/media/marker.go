package media

// MarkerKind names a timeline window type.
type MarkerKind string

const (
	MarkerIntro   MarkerKind = "intro"
	MarkerCredits MarkerKind = "credits"
)

// Marker is a named time window within an item's timeline. Markers are
// fetched once per item and are immutable for the session.
type Marker struct {
	Kind    MarkerKind
	StartMs int64
	EndMs   int64
}

// Contains reports whether a position falls inside the marker window.
// Both ends are inclusive.
func (m Marker) Contains(positionMs int64) bool {
	return m.StartMs <= positionMs && positionMs <= m.EndMs
}

// ActiveMarker returns the first marker in list order that contains the
// position, or nil. Intro and credits windows should not overlap, but if
// they do, list order makes the result deterministic.
func ActiveMarker(markers []Marker, positionMs int64) *Marker {
	for i := range markers {
		if markers[i].Contains(positionMs) {
			return &markers[i]
		}
	}
	return nil
}

// CreditsMarker returns the credits marker if present, or nil.
func CreditsMarker(markers []Marker) *Marker {
	for i := range markers {
		if markers[i].Kind == MarkerCredits {
			return &markers[i]
		}
	}
	return nil
}
