// Package state persists local client state: player settings, the client
// identifier, and the pending scrobble retry queue.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ldevreaux/marquee/internal/db"
)

const (
	appName    = "marquee"
	dbFileName = "marquee.db"
)

// Manager owns the local state database.
type Manager struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database in the XDG data dir.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	return openAt(dbPath)
}

// OpenInMemory opens an in-memory database, used by tests.
func OpenInMemory() (*Manager, error) {
	return openAt(":memory:")
}

func openAt(path string) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// ClientID returns the persistent identifier this install sends to the
// gateway, generating one on first use.
func (m *Manager) ClientID() (string, error) {
	var id string
	err := db.WithTx(m.db, func(tx *sql.Tx) error {
		scanErr := tx.QueryRow(`SELECT value FROM settings WHERE key = 'client_id'`).Scan(&id)
		if scanErr == nil {
			return nil
		}
		if scanErr != sql.ErrNoRows {
			return scanErr
		}

		id = uuid.NewString()
		_, insErr := tx.Exec(`INSERT INTO settings (key, value) VALUES ('client_id', ?)`, id)
		return insErr
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
