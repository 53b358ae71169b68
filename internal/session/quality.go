package session

import "github.com/ldevreaux/marquee/internal/stream"

// Quality is a user-selectable delivery preset. Direct presets attempt
// direct play first; the rest force a transcode at the given cap.
type Quality struct {
	Label          string
	MaxBitrateKbps int
	Direct         bool
}

// Qualities are the presets offered by the quality selector, best first.
var Qualities = []Quality{
	{Label: "Original", MaxBitrateKbps: stream.DefaultMaxBitrateKbps, Direct: true},
	{Label: "20 Mbps 1080p", MaxBitrateKbps: 20000},
	{Label: "8 Mbps 1080p", MaxBitrateKbps: 8000},
	{Label: "4 Mbps 720p", MaxBitrateKbps: 4000},
	{Label: "2 Mbps 480p", MaxBitrateKbps: 2000},
}

// QualityByLabel looks a preset up, defaulting to Original.
func QualityByLabel(label string) Quality {
	for _, q := range Qualities {
		if q.Label == label {
			return q
		}
	}
	return Qualities[0]
}
