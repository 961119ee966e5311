package storage

import (
	"encoding/json"
	"time"

	"github.com/evrwell/habitstore/internal/models"
)

// HabitQuery narrows GetHabits. Category switches the query to the
// (user_id, category) index; Active and Archived are applied as in-memory
// post-filters after the index scan.
type HabitQuery struct {
	Category       string
	Active         *bool
	Archived       *bool
	IncludeDeleted bool
}

// LogQuery narrows GetHabitLogs to a day range. Days are YYYY-MM-DD strings
// and compare lexicographically.
type LogQuery struct {
	StartDay       string
	EndDay         string
	IncludeDeleted bool
}

// Provider is the only surface other code may use to read or write the
// record families. Implementations own the local/server shape boundary and
// the soft-delete convention; the sync bookkeeping flags are never written
// by callers directly.
//
// Absence is reported as a nil record with a nil error, never as an error.
// Engine failures surface as non-nil errors wrapping ErrStorageUnavailable
// where the store itself cannot be reached.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Habits
	SaveHabit(habit models.Habit, synced bool) error
	SaveHabits(habits []models.Habit, synced bool) error
	GetHabit(id string) (*models.Habit, error)
	GetHabits(userID string, q HabitQuery) ([]models.Habit, error)
	GetUnsyncedHabits() ([]models.LocalHabit, error)
	// MarkHabitDeleted soft-deletes: deleted=true, synced=false. The row
	// stays until a sync pass purges it.
	MarkHabitDeleted(id string) error
	// DeleteHabit is an unconditional hard delete with no sync bookkeeping,
	// intended for local-only cleanup.
	DeleteHabit(id string) error

	// Habit logs
	SaveHabitLog(log models.HabitLog, synced bool) error
	SaveHabitLogs(logs []models.HabitLog, synced bool) error
	GetHabitLog(id string) (*models.HabitLog, error)
	GetHabitLogs(habitID string, q LogQuery) ([]models.HabitLog, error)
	GetHabitLogsByDay(userID, day string) ([]models.HabitLog, error)
	GetUnsyncedHabitLogs() ([]models.LocalHabitLog, error)
	MarkHabitLogDeleted(id string) error

	// Streaks: at most one logical row per (habit_id, user_id)
	SaveHabitStreak(streak models.HabitStreak) error
	GetHabitStreak(habitID, userID string) (*models.HabitStreak, error)

	// Generic TTL cache. CacheGet enforces expiry at read time without
	// deleting the row; ClearExpiredCache is the eager physical sweep and
	// returns the number of rows purged.
	CacheSet(key string, data any, ttl time.Duration) error
	CacheGet(key string) (json.RawMessage, error)
	CacheDelete(key string) error
	ClearExpiredCache() (int, error)
	CacheHabitStats(userID string, stats models.HabitStats) error
	GetCachedHabitStats(userID string) (*models.HabitStats, error)

	// Request queue (schema only; draining is an extension point)
	EnqueueRequest(req models.QueuedRequest) error
	GetPendingRequests() ([]models.QueuedRequest, error)
	DeleteRequest(id string) error
	IncrementRequestAttempts(id string) error

	// ClearAllData wipes habits, habit_logs, habit_streaks and cache.
	// The request queue is deliberately left intact.
	ClearAllData() error
}
