// Package transcode owns the lifecycle of server-side transcode sessions:
// kicking the server into producing segments, deriving the per-session
// playlist URL, and best-effort teardown.
package transcode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager starts and stops transcode sessions against a Plex server,
// bypassing the gateway. One session is tied 1:1 to a loaded stream.
type Manager struct {
	httpClient *http.Client
}

// NewManager creates a transcode session manager.
func NewManager() *Manager {
	return &Manager{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Start issues the start request so the server begins producing segments,
// waits the backend's settle delay, and returns the session identifier plus
// the derived per-session playlist URL. The settle delay exists because the
// playlist is requested before the server has finished the first segments;
// its length depends on how eagerly the active backend fetches.
func (m *Manager) Start(ctx context.Context, startURL string, settle time.Duration) (sessionID, sessionURL string, err error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return "", "", fmt.Errorf("parse start url: %w", err)
	}

	sessionID = parsed.Query().Get("session")
	if sessionID == "" {
		// Some server versions carry the session in the path instead; fall
		// back to a fresh identifier the stop call can still reference.
		sessionID = uuid.NewString()
	}
	token := parsed.Query().Get("X-Plex-Token")
	base := parsed.Scheme + "://" + parsed.Host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, startURL, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("create start request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("start transcode session: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("start transcode session: status %d", resp.StatusCode)
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return "", "", ctx.Err()
	}

	return sessionID, SessionURL(base, sessionID, token), nil
}

// SessionURL returns the per-session playlist URL segments are served from.
func SessionURL(serverBase, sessionID, token string) string {
	return fmt.Sprintf("%s/video/:/transcode/universal/session/%s/base/index.m3u8?X-Plex-Token=%s",
		serverBase, url.PathEscape(sessionID), url.QueryEscape(token))
}

// StopURL returns the teardown URL for a session.
func StopURL(serverBase, sessionID, token string) string {
	return fmt.Sprintf("%s/video/:/transcode/universal/stop?session=%s&X-Plex-Token=%s",
		serverBase, url.QueryEscape(sessionID), url.QueryEscape(token))
}

// Stop tears a session down. It is best-effort: by the time it runs the
// user has already navigated away, so failures are logged and swallowed.
// Callers must not issue Stop twice for the same session id.
func (m *Manager) Stop(serverBase, sessionID, token string) {
	req, err := http.NewRequest(http.MethodGet, StopURL(serverBase, sessionID, token), http.NoBody)
	if err != nil {
		logrus.WithError(err).Warn("build transcode stop request")
		return
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("session", sessionID).Warn("stop transcode session")
		return
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"session": sessionID,
			"status":  resp.StatusCode,
		}).Warn("stop transcode session")
	}
}
