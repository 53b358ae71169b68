package plex

import (
	"errors"

	"github.com/ldevreaux/marquee/internal/media"
)

// ErrNoServers is returned when the gateway reports no Plex servers.
var ErrNoServers = errors.New("no plex server configured")

// ErrNoConnections is returned when a server has no usable connection.
var ErrNoConnections = errors.New("no server connection available")

// Metadata is one item as returned by the gateway, which proxies the Plex
// MediaContainer shape.
type Metadata struct {
	RatingKey            string  `json:"ratingKey"`
	Key                  string  `json:"key"`
	Type                 string  `json:"type"`
	Title                string  `json:"title"`
	Index                int     `json:"index"`
	ParentRatingKey      string  `json:"parentRatingKey"`
	ParentTitle          string  `json:"parentTitle"`
	GrandparentRatingKey string  `json:"grandparentRatingKey"`
	GrandparentTitle     string  `json:"grandparentTitle"`
	ViewOffset           int64   `json:"viewOffset"`
	ViewCount            int     `json:"viewCount"`
	Duration             int64   `json:"duration"`
	Media                []Media `json:"Media"`
}

// IsDirectory reports whether the item is browsed into rather than played.
func (m Metadata) IsDirectory() bool {
	switch m.Type {
	case "movie", "episode":
		return false
	default:
		return true
	}
}

// Media holds the technical stream info of one media version.
type Media struct {
	Container  string `json:"container"`
	VideoCodec string `json:"videoCodec"`
	AudioCodec string `json:"audioCodec"`
	Bitrate    int    `json:"bitrate"`
	Part       []Part `json:"Part"`
}

// Part is one file of a media version. Key is the server-relative path used
// to build a direct play URL.
type Part struct {
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	Container string `json:"container"`
}

// Item converts gateway metadata to the playback item model.
func (m Metadata) Item() media.Item {
	return media.Item{
		RatingKey:            m.RatingKey,
		Title:                m.Title,
		Kind:                 media.ParseKind(m.Type),
		Index:                m.Index,
		ParentRatingKey:      m.ParentRatingKey,
		ParentTitle:          m.ParentTitle,
		GrandparentRatingKey: m.GrandparentRatingKey,
		GrandparentTitle:     m.GrandparentTitle,
		ViewOffsetMs:         m.ViewOffset,
		DurationMs:           m.Duration,
	}
}

// FirstMedia returns the first media version, or nil when the item carries
// no technical info.
func (m Metadata) FirstMedia() *Media {
	if len(m.Media) == 0 {
		return nil
	}
	return &m.Media[0]
}

type mediaContainer struct {
	MediaContainer struct {
		Metadata []Metadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

// Server is one Plex server known to the gateway.
type Server struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Connection is one way to reach a server. Relay connections are tunnelled
// through plex.tv and are slow; they are used only as a last resort.
type Connection struct {
	URI   string `json:"uri"`
	Local bool   `json:"local"`
	Relay bool   `json:"relay"`
}

// ServerToken pairs a server with its access token, from the auth endpoint.
type ServerToken struct {
	ID          string `json:"id"`
	AccessToken string `json:"accessToken"`
}

// Endpoint is a resolved server base URL plus its access token. It is
// retained by the session only for transcode teardown and never exposed to
// the UI layer.
type Endpoint struct {
	BaseURL string
	Token   string
}

type markersResponse struct {
	Markers []struct {
		Type            string `json:"type"`
		StartTimeOffset int64  `json:"startTimeOffset"`
		EndTimeOffset   int64  `json:"endTimeOffset"`
	} `json:"markers"`
}

type streamResponse struct {
	URL string `json:"url"`
}

// PlayState is the playback state reported to the progress endpoint.
type PlayState string

const (
	StatePlaying PlayState = "playing"
	StatePaused  PlayState = "paused"
	StateStopped PlayState = "stopped"
)
