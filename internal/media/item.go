// Package media holds the library item and marker types shared by the
// playback session and the browse layer.
package media

import "fmt"

// Kind classifies a library item.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindShow    Kind = "show"
	KindSeason  Kind = "season"
	KindEpisode Kind = "episode"
	KindOther   Kind = "other"
)

// ParseKind maps a raw gateway type string to a Kind.
func ParseKind(s string) Kind {
	switch s {
	case "movie":
		return KindMovie
	case "show":
		return KindShow
	case "season":
		return KindSeason
	case "episode":
		return KindEpisode
	default:
		return KindOther
	}
}

// Item identifies content to play. It is constructed by the browse layer
// before a playback session starts and is immutable for the duration of
// one session; playing the next episode produces a new Item and ends the
// current session.
type Item struct {
	RatingKey            string
	Title                string
	Kind                 Kind
	Index                int // episode or season number within the parent
	ParentRatingKey      string
	ParentTitle          string
	GrandparentRatingKey string
	GrandparentTitle     string
	ViewOffsetMs         int64 // last known server-side resume offset
	DurationMs           int64 // 0 until known
}

// IsEpisode reports whether the item is a show episode.
func (i Item) IsEpisode() bool {
	return i.Kind == KindEpisode
}

// DisplayTitle returns the title to show in the player bar. Episodes are
// prefixed with the show title.
func (i Item) DisplayTitle() string {
	if i.IsEpisode() && i.GrandparentTitle != "" {
		return fmt.Sprintf("%s - %s", i.GrandparentTitle, i.Title)
	}
	return i.Title
}
