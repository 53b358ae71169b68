package state

import "database/sql"

// PlayerState holds the persisted player settings.
type PlayerState struct {
	Volume  float64
	Muted   bool
	Backend string
	Quality string
}

// GetPlayerState returns the saved player settings, with defaults when
// nothing was saved yet.
func (m *Manager) GetPlayerState() (*PlayerState, error) {
	var s PlayerState
	row := m.db.QueryRow(`SELECT volume, muted, backend, quality FROM player_state WHERE id = 1`)
	err := row.Scan(&s.Volume, &s.Muted, &s.Backend, &s.Quality)
	if err == sql.ErrNoRows {
		return &PlayerState{Volume: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SavePlayerState persists the player settings.
func (m *Manager) SavePlayerState(s PlayerState) error {
	_, err := m.db.Exec(`
		INSERT INTO player_state (id, volume, muted, backend, quality)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			backend = excluded.backend,
			quality = excluded.quality
	`, s.Volume, s.Muted, s.Backend, s.Quality)
	return err
}
