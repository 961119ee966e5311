package system

import (
	"fmt"

	"github.com/evrwell/habitstore/internal/cli"
	"github.com/evrwell/habitstore/internal/health"
	"github.com/evrwell/habitstore/internal/storage/sqlite"
)

type HealCmd struct{}

// Run opens the database through the health manager, which probes every
// table and rebuilds the file from the migrations if the probe fails.
func (c *HealCmd) Run(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("heal command only supports SQLite storage")
	}

	// Work on a fresh handle so the shared store is not left half-open.
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	mgr := health.NewManager(ctx.Store.GetConfigPath())
	store, err := mgr.Initialize()
	if err != nil {
		return err
	}
	defer store.Close()

	healthy, err := mgr.CheckDatabaseHealth(store)
	if !healthy {
		return fmt.Errorf("database still unhealthy after heal: %v", err)
	}

	fmt.Println(cli.OK("Database is healthy"))
	return nil
}
