package health

import (
	"fmt"
	"os"

	"github.com/evrwell/habitstore/internal/logger"
	"github.com/evrwell/habitstore/internal/storage/sqlite"
)

// Manager owns database startup. It opens the store, probes every table,
// and when the file is corrupted it deletes the database and rebuilds it
// from the migrations rather than leaving the application unusable.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Initialize opens the store at the manager's path and verifies it is
// healthy. On a failed health check the database file is removed and
// initialization is retried once against a fresh file. Local unsynced
// data is lost in that case; the trade is a working store over a corrupt
// one that fails every operation.
func (m *Manager) Initialize() (*sqlite.Store, error) {
	store := sqlite.NewStore(m.path)

	err := store.Init()
	if err == nil {
		if healthy, herr := m.CheckDatabaseHealth(store); healthy {
			return store, nil
		} else if herr != nil {
			err = herr
		} else {
			err = fmt.Errorf("database health check failed")
		}
	}

	logger.Warn("database unhealthy, recreating", "path", m.path, "error", err)
	store.Close()

	if err := m.removeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to remove corrupt database: %w", err)
	}

	store = sqlite.NewStore(m.path)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to recreate database: %w", err)
	}

	healthy, herr := m.CheckDatabaseHealth(store)
	if !healthy {
		store.Close()
		if herr != nil {
			return nil, fmt.Errorf("database unhealthy after recreation: %w", herr)
		}
		return nil, fmt.Errorf("database unhealthy after recreation")
	}

	logger.Info("database recreated", "path", m.path)
	return store, nil
}

// CheckDatabaseHealth probes every declared table with a trivial count.
// A store is healthy only if all tables answer.
func (m *Manager) CheckDatabaseHealth(store *sqlite.Store) (bool, error) {
	for _, table := range store.Tables() {
		if _, err := store.CountRows(table); err != nil {
			return false, fmt.Errorf("table %s failed health probe: %w", table, err)
		}
	}
	return true, nil
}

// removeDatabase deletes the database file along with its WAL and shared
// memory sidecars so the rebuild starts from a clean slate.
func (m *Manager) removeDatabase() error {
	for _, path := range []string{m.path, m.path + "-wal", m.path + "-shm"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
