// Package plex provides the HTTP client for the metadata gateway, which
// proxies Plex Media Server and the external metadata providers.
package plex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/ldevreaux/marquee/internal/media"
)

// Client provides access to the metadata gateway API.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// NewClient creates a new gateway client. clientID identifies this install
// to the gateway and is persisted in local state.
func NewClient(baseURL, clientID string) *Client {
	return &Client{
		baseURL:    baseURL,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Identifier", c.clientID)
}

// Metadata fetches one item's metadata, including its technical stream info
// and the server-side resume offset.
func (c *Client) Metadata(ctx context.Context, ratingKey string) (*Metadata, error) {
	var result mediaContainer
	if err := c.get(ctx, "/api/plex/metadata/"+url.PathEscape(ratingKey), &result); err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	if len(result.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("metadata: item %s not found", ratingKey)
	}
	return &result.MediaContainer.Metadata[0], nil
}

// Markers fetches the intro/credits markers for an item. Unknown marker
// types are dropped.
func (c *Client) Markers(ctx context.Context, ratingKey string) ([]media.Marker, error) {
	var result markersResponse
	if err := c.get(ctx, "/api/plex/markers?ratingKey="+url.QueryEscape(ratingKey), &result); err != nil {
		return nil, fmt.Errorf("fetch markers: %w", err)
	}

	markers := make([]media.Marker, 0, len(result.Markers))
	for _, m := range result.Markers {
		switch m.Type {
		case "intro", "credits":
			markers = append(markers, media.Marker{
				Kind:    media.MarkerKind(m.Type),
				StartMs: m.StartTimeOffset,
				EndMs:   m.EndTimeOffset,
			})
		}
	}
	return markers, nil
}

// Servers lists the Plex servers known to the gateway.
func (c *Client) Servers(ctx context.Context) ([]Server, error) {
	var result []Server
	if err := c.get(ctx, "/api/plex/servers", &result); err != nil {
		return nil, fmt.Errorf("fetch servers: %w", err)
	}
	return result, nil
}

// Connections lists the ways to reach one server.
func (c *Client) Connections(ctx context.Context, serverID string) ([]Connection, error) {
	var result []Connection
	if err := c.get(ctx, "/api/plex/servers/"+url.PathEscape(serverID)+"/connections", &result); err != nil {
		return nil, fmt.Errorf("fetch connections: %w", err)
	}
	return result, nil
}

// AuthServers lists server access tokens.
func (c *Client) AuthServers(ctx context.Context) ([]ServerToken, error) {
	var result []ServerToken
	if err := c.get(ctx, "/api/auth/servers", &result); err != nil {
		return nil, fmt.Errorf("fetch auth servers: %w", err)
	}
	return result, nil
}

// Endpoint discovers the server base URL and access token used for direct
// play and transcode URLs. Preference order: local, then remote, then relay.
func (c *Client) Endpoint(ctx context.Context) (*Endpoint, error) {
	servers, err := c.Servers(ctx)
	if err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, ErrNoServers
	}
	server := servers[0]

	conns, err := c.Connections(ctx, server.ID)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, ErrNoConnections
	}

	conn, found := lo.Find(conns, func(cn Connection) bool { return cn.Local && !cn.Relay })
	if !found {
		conn, found = lo.Find(conns, func(cn Connection) bool { return !cn.Relay })
	}
	if !found {
		conn = conns[0]
	}

	tokens, err := c.AuthServers(ctx)
	if err != nil {
		return nil, err
	}
	token, found := lo.Find(tokens, func(t ServerToken) bool { return t.ID == server.ID })
	if !found {
		return nil, fmt.Errorf("%w: no token for server %s", ErrNoConnections, server.ID)
	}

	return &Endpoint{BaseURL: conn.URI, Token: token.AccessToken}, nil
}

// StreamURL requests a transcode stream URL with the conservative target
// profile (H.264/AAC, capped bitrate, mpegts segments), playable by either
// backend.
func (c *Client) StreamURL(ctx context.Context, ratingKey string, maxVideoBitrate int) (string, error) {
	params := url.Values{}
	params.Set("protocol", "hls")
	params.Set("directPlay", "0")
	params.Set("directStream", "0")
	params.Set("autoAdjustQuality", "0")
	params.Set("maxVideoBitrate", strconv.Itoa(maxVideoBitrate))
	params.Set("videoCodec", "h264")
	params.Set("audioCodec", "aac")
	params.Set("container", "mpegts")

	var result streamResponse
	path := "/api/plex/stream/" + url.PathEscape(ratingKey) + "?" + params.Encode()
	if err := c.get(ctx, path, &result); err != nil {
		return "", fmt.Errorf("fetch stream url: %w", err)
	}
	return result.URL, nil
}

// Progress reports the current playhead position and play state.
func (c *Client) Progress(ctx context.Context, ratingKey string, timeMs, durationMs int64, state PlayState) error {
	body := map[string]any{
		"ratingKey": ratingKey,
		"time":      timeMs,
		"duration":  durationMs,
		"state":     string(state),
	}
	if err := c.post(ctx, "/api/plex/progress", body); err != nil {
		return fmt.Errorf("report progress: %w", err)
	}
	return nil
}

// Scrobble marks an item as fully watched.
func (c *Client) Scrobble(ctx context.Context, ratingKey string) error {
	body := map[string]any{"ratingKey": ratingKey}
	if err := c.post(ctx, "/api/plex/scrobble", body); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// Libraries lists the server's library sections.
func (c *Client) Libraries(ctx context.Context) ([]Metadata, error) {
	var result mediaContainer
	if err := c.get(ctx, "/api/plex/libraries", &result); err != nil {
		return nil, fmt.Errorf("fetch libraries: %w", err)
	}
	return result.MediaContainer.Metadata, nil
}

// Children lists the children of a directory item (library sections, show
// seasons, season episodes).
func (c *Client) Children(ctx context.Context, key string) ([]Metadata, error) {
	var result mediaContainer
	if err := c.get(ctx, "/api/plex/dir/"+url.PathEscape(key)+"/children", &result); err != nil {
		return nil, fmt.Errorf("fetch children: %w", err)
	}
	return result.MediaContainer.Metadata, nil
}

// NextEpisode finds the episode following item within its season, or nil
// when item is the last one. Non-episodes have no next item.
func (c *Client) NextEpisode(ctx context.Context, item media.Item) (*media.Item, error) {
	if !item.IsEpisode() || item.ParentRatingKey == "" {
		return nil, nil
	}

	siblings, err := c.Children(ctx, item.ParentRatingKey)
	if err != nil {
		return nil, err
	}

	idx := lo.IndexOf(lo.Map(siblings, func(m Metadata, _ int) string { return m.RatingKey }), item.RatingKey)
	if idx < 0 || idx+1 >= len(siblings) {
		return nil, nil
	}
	next := siblings[idx+1].Item()
	return &next, nil
}
