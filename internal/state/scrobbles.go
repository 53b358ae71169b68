package state

import "time"

// PendingScrobble is a watched-mark that failed to reach the gateway and
// waits for retry.
type PendingScrobble struct {
	ID        int64
	RatingKey string
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// QueuePendingScrobble stores a scrobble for later retry.
func (m *Manager) QueuePendingScrobble(ratingKey string) error {
	_, err := m.db.Exec(`
		INSERT INTO pending_scrobbles (rating_key, created_at) VALUES (?, ?)
	`, ratingKey, time.Now().Unix())
	return err
}

// GetPendingScrobbles returns all queued scrobbles, oldest first.
func (m *Manager) GetPendingScrobbles() ([]PendingScrobble, error) {
	rows, err := m.db.Query(`
		SELECT id, rating_key, attempts, COALESCE(last_error, ''), created_at
		FROM pending_scrobbles ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingScrobble
	for rows.Next() {
		var p PendingScrobble
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.RatingKey, &p.Attempts, &p.LastError, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// UpdatePendingScrobbleAttempt records a failed retry.
func (m *Manager) UpdatePendingScrobbleAttempt(id int64, lastError string) error {
	_, err := m.db.Exec(`
		UPDATE pending_scrobbles SET attempts = attempts + 1, last_error = ? WHERE id = ?
	`, lastError, id)
	return err
}

// DeletePendingScrobble removes a scrobble after successful delivery.
func (m *Manager) DeletePendingScrobble(id int64) error {
	_, err := m.db.Exec(`DELETE FROM pending_scrobbles WHERE id = ?`, id)
	return err
}
