package cli

import (
	"fmt"
	"time"

	"github.com/evrwell/habitstore/internal/backup"
	"github.com/evrwell/habitstore/internal/constants"
	"github.com/evrwell/habitstore/internal/logger"
	"github.com/evrwell/habitstore/internal/stats"
	"github.com/evrwell/habitstore/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Stats  *stats.Service
	UserID string
}

// PerformAutomaticBackup creates an automatic backup and silently handles
// errors so a failed backup never blocks the user's command.
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

// ResolveDay validates a YYYY-MM-DD day string, defaulting to today when
// empty.
func ResolveDay(day string) (string, error) {
	if day == "" {
		return time.Now().Format(constants.DateFormat), nil
	}
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	return day, nil
}
