package health

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evrwell/habitstore/internal/storage/sqlite"
)

func TestInitializeFreshDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	mgr := NewManager(dbPath)
	store, err := mgr.Initialize()
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer store.Close()

	healthy, err := mgr.CheckDatabaseHealth(store)
	if err != nil {
		t.Fatalf("health check errored: %v", err)
	}
	if !healthy {
		t.Error("expected fresh database to be healthy")
	}
}

func TestInitializePreservesExistingData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.CacheSet("key", "value", time.Hour); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}
	store.Close()

	mgr := NewManager(dbPath)
	store, err := mgr.Initialize()
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer store.Close()

	raw, err := store.CacheGet("key")
	if err != nil {
		t.Fatalf("failed to get cache: %v", err)
	}
	if raw == nil {
		t.Error("expected healthy database to keep its data across Initialize")
	}
}

func TestInitializeRecreatesCorruptDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Garbage that is not a SQLite file
	if err := os.WriteFile(dbPath, []byte("this is not a database"), 0600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	mgr := NewManager(dbPath)
	store, err := mgr.Initialize()
	if err != nil {
		t.Fatalf("Initialize failed to self-heal: %v", err)
	}
	defer store.Close()

	healthy, err := mgr.CheckDatabaseHealth(store)
	if err != nil {
		t.Fatalf("health check errored after heal: %v", err)
	}
	if !healthy {
		t.Error("expected recreated database to be healthy")
	}

	// The rebuilt store is empty but fully usable
	for _, table := range store.Tables() {
		count, err := store.CountRows(table)
		if err != nil {
			t.Fatalf("CountRows(%s) failed after heal: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected empty %s after heal, got %d rows", table, count)
		}
	}
}

func TestInitializeRecreatesPartialSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// A valid store whose schema has been vandalized
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	db := store.GetDB()
	if _, err := db.Exec("DROP TABLE habits"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}
	store.Close()

	mgr := NewManager(dbPath)
	healed, err := mgr.Initialize()
	if err != nil {
		t.Fatalf("Initialize failed to self-heal: %v", err)
	}
	defer healed.Close()

	if _, err := healed.CountRows("habits"); err != nil {
		t.Errorf("expected habits table restored after heal: %v", err)
	}
}
