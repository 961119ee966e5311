package constants

import "time"

const (
	AppName            = "habitstore"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitstore/habitstore.db"
	Version            = "v0.3.0"

	// DateFormat is the standard day format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitstore-"
	BackupFileSuffix = ".db"

	// Default TTLs for cached server responses, per record family.
	DefaultHabitsTTL  = 24 * time.Hour
	DefaultLogsTTL    = 12 * time.Hour
	DefaultStatsTTL   = 6 * time.Hour
	DefaultStreaksTTL = 12 * time.Hour

	// DefaultSweepInterval is how often the periodic cache sweep runs.
	DefaultSweepInterval = 30 * time.Minute

	// StatsCacheKeyPrefix prefixes per-user cached habit statistics.
	StatsCacheKeyPrefix = "stats_"
)
