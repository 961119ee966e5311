package system

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/evrwell/habitstore/internal/backup"
	"github.com/evrwell/habitstore/internal/cli"
	"github.com/evrwell/habitstore/internal/migration"
	"github.com/evrwell/habitstore/internal/storage/sqlite"
	"github.com/evrwell/habitstore/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Println(cli.Fail("Database reachable: FAIL"))
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Println(cli.OK("Database reachable: OK"))
		dbReachable = true
	}

	checks := []struct {
		name string
		fn   func(*cli.Context) error
	}{
		{"Schema version", checkSchemaVersion},
		{"Migrations complete", checkMigrationsComplete},
		{"Table health", checkTableHealth},
		{"Duplicate log entries", checkLogDuplicates},
		{"Date formats", checkDateFormats},
		{"Timestamp integrity", checkTimestampIntegrity},
		{"Cache expiry bounds", checkCacheExpiry},
	}

	for _, check := range checks {
		if !dbReachable {
			fmt.Println(cli.Skip(check.name + ": SKIPPED (database not reachable)"))
			continue
		}
		if err := check.fn(ctx); err != nil {
			fmt.Println(cli.Fail(check.name + ": FAIL"))
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Println(cli.OK(check.name + ": OK"))
		}
	}

	// Backups are a warning, not a failure
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Println(cli.Warn("Backups present: WARNING"))
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Println(cli.OK("Backups present: OK"))
	}

	if err := checkClock(); err != nil {
		fmt.Println(cli.Fail("Clock sanity: FAIL"))
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Println(cli.OK("Clock sanity: OK"))
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func sqliteRunner(ctx *cli.Context) (*migration.Runner, error) {
	sqliteStore, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil, nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations: %w", err)
	}

	return migration.NewRunner(db, subFS), nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := sqliteRunner(ctx)
	if runner == nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := sqliteRunner(ctx)
	if runner == nil {
		return err
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion < latestVersion {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", currentVersion, latestVersion)
	}

	return nil
}

func checkTableHealth(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	for _, table := range sqliteStore.Tables() {
		if _, err := sqliteStore.CountRows(table); err != nil {
			return fmt.Errorf("table %s failed probe: %w", table, err)
		}
	}

	return nil
}

func checkLogDuplicates(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var duplicateCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM (
			SELECT habit_id, day, COUNT(*) as cnt
			FROM habit_logs
			GROUP BY habit_id, day
			HAVING cnt > 1
		)
	`).Scan(&duplicateCount)
	if err != nil {
		return fmt.Errorf("failed to check duplicate habit logs: %w", err)
	}
	if duplicateCount > 0 {
		return fmt.Errorf("found %d habit+day combinations with duplicate logs", duplicateCount)
	}

	return nil
}

func checkDateFormats(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var invalidCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM habit_logs
		WHERE day NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'
	`).Scan(&invalidCount)
	if err != nil {
		return fmt.Errorf("failed to check habit log dates: %w", err)
	}
	if invalidCount > 0 {
		return fmt.Errorf("found %d habit logs with invalid date format", invalidCount)
	}

	return nil
}

func checkTimestampIntegrity(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	for _, table := range []string{"habits", "habit_logs"} {
		var corruptedCount int
		err := db.QueryRow(`
			SELECT COUNT(*) FROM ` + table + ` WHERE created_at = '' OR updated_at = ''
		`).Scan(&corruptedCount)
		if err != nil {
			return fmt.Errorf("failed to check %s timestamps: %w", table, err)
		}
		if corruptedCount > 0 {
			return fmt.Errorf("found %d rows in %s with corrupted timestamps", corruptedCount, table)
		}
	}

	return nil
}

func checkCacheExpiry(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Every cache row must expire after it was created.
	var invalidCount int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM cache WHERE expires_ms <= created_ms
	`).Scan(&invalidCount)
	if err != nil {
		return fmt.Errorf("failed to check cache expiry bounds: %w", err)
	}
	if invalidCount > 0 {
		return fmt.Errorf("found %d cache rows with non-positive TTL", invalidCount)
	}

	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitstore backup create'")
	}

	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
