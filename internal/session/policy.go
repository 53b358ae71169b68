package session

import "github.com/ldevreaux/marquee/internal/media"

const (
	// seekNoiseMs: positions at or below this are start-of-file noise and
	// never worth a seek.
	seekNoiseMs = 2000

	// nearEndRemainingMs / nearEndCompletedPct: a resume position this
	// close to the end means the viewing is effectively finished; resuming
	// there would replay credits, so start over instead.
	nearEndRemainingMs  = 30000
	nearEndCompletedPct = 98

	// countdownFallbackMs is the countdown window when no credits marker exists.
	countdownFallbackMs = 30000
)

// resumePositionMs computes where the initial seek should land. Returning 0
// means "start from the beginning, no seek".
//
// The persisted view offset travels with the item from the browse screen
// and may be stale; a freshly fetched server offset wins only when the
// persisted one is small enough to be meaningless.
func resumePositionMs(persistedMs, serverMs, durationMs int64) int64 {
	pos := persistedMs
	if persistedMs <= seekNoiseMs && serverMs > pos {
		pos = serverMs
	}

	if durationMs > 0 {
		if pos*100 >= durationMs*nearEndCompletedPct || durationMs-pos < nearEndRemainingMs {
			return 0
		}
	}

	if pos <= seekNoiseMs {
		return 0
	}
	return pos
}

// countdownSecs derives the next-episode countdown for the current
// position: NoCountdown until the position passes the credits marker start
// (or the final 30 seconds when no credits marker exists), then whole
// seconds remaining, rounded up.
func countdownSecs(isEpisode, hasNext bool, markers []media.Marker, positionMs, durationMs int64) int {
	if !isEpisode || !hasNext || durationMs <= 0 {
		return NoCountdown
	}

	threshold := durationMs - countdownFallbackMs
	if credits := media.CreditsMarker(markers); credits != nil {
		threshold = credits.StartMs
	}
	if positionMs < threshold {
		return NoCountdown
	}

	remaining := durationMs - positionMs
	if remaining <= 0 {
		return 0
	}
	return int((remaining + 999) / 1000)
}

// clampPositionMs bounds a seek target to the known timeline.
func clampPositionMs(positionMs, durationMs int64) int64 {
	if positionMs < 0 {
		return 0
	}
	if durationMs > 0 && positionMs > durationMs {
		return durationMs
	}
	return positionMs
}
