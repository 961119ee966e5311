package stats

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/evrwell/habitstore/internal/models"
	"github.com/evrwell/habitstore/internal/storage/sqlite"
)

func setupTestService(t *testing.T) (*Service, *sqlite.Store) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewService(store), store
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func completedLog(id, habitID, userID string, when time.Time) models.HabitLog {
	return models.HabitLog{
		ID:        id,
		HabitID:   habitID,
		UserID:    userID,
		Day:       day(when),
		Status:    models.StatusCompleted,
		CreatedAt: when,
		UpdatedAt: when,
	}
}

func TestDeriveStreak(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("empty history", func(t *testing.T) {
		streak := DeriveStreak(nil, now)
		if streak.CurrentStreak != 0 || streak.LongestStreak != 0 || streak.TotalCompletions != 0 {
			t.Errorf("expected zero streak for empty history, got %+v", streak)
		}
	})

	t.Run("run ending today", func(t *testing.T) {
		var logs []models.HabitLog
		for i := 0; i < 3; i++ {
			logs = append(logs, completedLog("log", "h", "u", now.AddDate(0, 0, -i)))
		}
		streak := DeriveStreak(logs, now)
		if streak.CurrentStreak != 3 {
			t.Errorf("expected current streak 3, got %d", streak.CurrentStreak)
		}
		if streak.LongestStreak != 3 {
			t.Errorf("expected longest streak 3, got %d", streak.LongestStreak)
		}
		if streak.LastCompletedDay != day(now) {
			t.Errorf("expected last completed %s, got %s", day(now), streak.LastCompletedDay)
		}
	})

	t.Run("run ending yesterday still counts", func(t *testing.T) {
		logs := []models.HabitLog{
			completedLog("a", "h", "u", now.AddDate(0, 0, -1)),
			completedLog("b", "h", "u", now.AddDate(0, 0, -2)),
		}
		streak := DeriveStreak(logs, now)
		if streak.CurrentStreak != 2 {
			t.Errorf("expected current streak 2, got %d", streak.CurrentStreak)
		}
	})

	t.Run("stale run resets current", func(t *testing.T) {
		logs := []models.HabitLog{
			completedLog("a", "h", "u", now.AddDate(0, 0, -5)),
			completedLog("b", "h", "u", now.AddDate(0, 0, -6)),
			completedLog("c", "h", "u", now.AddDate(0, 0, -7)),
		}
		streak := DeriveStreak(logs, now)
		if streak.CurrentStreak != 0 {
			t.Errorf("expected current streak 0 for stale run, got %d", streak.CurrentStreak)
		}
		if streak.LongestStreak != 3 {
			t.Errorf("expected longest streak 3, got %d", streak.LongestStreak)
		}
	})

	t.Run("longest run beats current", func(t *testing.T) {
		logs := []models.HabitLog{
			completedLog("a", "h", "u", now),
			completedLog("b", "h", "u", now.AddDate(0, 0, -4)),
			completedLog("c", "h", "u", now.AddDate(0, 0, -5)),
			completedLog("d", "h", "u", now.AddDate(0, 0, -6)),
		}
		streak := DeriveStreak(logs, now)
		if streak.CurrentStreak != 1 {
			t.Errorf("expected current streak 1, got %d", streak.CurrentStreak)
		}
		if streak.LongestStreak != 3 {
			t.Errorf("expected longest streak 3, got %d", streak.LongestStreak)
		}
	})

	t.Run("non-completed statuses break runs", func(t *testing.T) {
		logs := []models.HabitLog{
			completedLog("a", "h", "u", now),
			{ID: "b", HabitID: "h", UserID: "u", Day: day(now.AddDate(0, 0, -1)), Status: models.StatusMissed},
			completedLog("c", "h", "u", now.AddDate(0, 0, -2)),
		}
		streak := DeriveStreak(logs, now)
		if streak.CurrentStreak != 1 {
			t.Errorf("expected current streak 1, got %d", streak.CurrentStreak)
		}
		if streak.TotalCompletions != 2 {
			t.Errorf("expected 2 total completions, got %d", streak.TotalCompletions)
		}
	})
}

func TestRecomputeStreakPersists(t *testing.T) {
	svc, store := setupTestService(t)

	now := time.Now()
	svc.now = func() time.Time { return now }

	logs := []models.HabitLog{
		completedLog("log-1", "habit-1", "user-1", now),
		completedLog("log-2", "habit-1", "user-1", now.AddDate(0, 0, -1)),
	}
	if err := store.SaveHabitLogs(logs, true); err != nil {
		t.Fatalf("failed to save logs: %v", err)
	}

	streak, err := svc.RecomputeStreak("habit-1", "user-1")
	if err != nil {
		t.Fatalf("RecomputeStreak failed: %v", err)
	}
	if streak.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", streak.CurrentStreak)
	}

	stored, err := store.GetHabitStreak("habit-1", "user-1")
	if err != nil {
		t.Fatalf("failed to get streak: %v", err)
	}
	if stored == nil || stored.CurrentStreak != 2 {
		t.Errorf("expected persisted streak, got %+v", stored)
	}

	// Recompute reuses the stored row's identity
	again, err := svc.RecomputeStreak("habit-1", "user-1")
	if err != nil {
		t.Fatalf("second RecomputeStreak failed: %v", err)
	}
	if again.ID != streak.ID {
		t.Errorf("expected stable streak ID across recomputes, got %s then %s", streak.ID, again.ID)
	}
}

func TestComputeHabitStats(t *testing.T) {
	svc, store := setupTestService(t)

	now := time.Now()
	svc.now = func() time.Time { return now }

	habits := []models.Habit{
		{ID: "habit-1", UserID: "user-1", Name: "Run", Category: "fitness", Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "habit-2", UserID: "user-1", Name: "Read", Category: "mind", Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "habit-3", UserID: "user-1", Name: "Old", Category: "misc", Active: false, Archived: true, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.SaveHabits(habits, true); err != nil {
		t.Fatalf("failed to save habits: %v", err)
	}

	logs := []models.HabitLog{
		completedLog("log-1", "habit-1", "user-1", now),
		completedLog("log-2", "habit-1", "user-1", now.AddDate(0, 0, -1)),
		{ID: "log-3", HabitID: "habit-2", UserID: "user-1", Day: day(now), Status: models.StatusMissed, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.SaveHabitLogs(logs, true); err != nil {
		t.Fatalf("failed to save logs: %v", err)
	}

	stats, err := svc.ComputeHabitStats("user-1")
	if err != nil {
		t.Fatalf("ComputeHabitStats failed: %v", err)
	}

	if stats.TotalHabits != 3 {
		t.Errorf("expected 3 total habits, got %d", stats.TotalHabits)
	}
	if stats.ActiveHabits != 2 {
		t.Errorf("expected 2 active habits, got %d", stats.ActiveHabits)
	}
	if stats.CompletedToday != 1 {
		t.Errorf("expected 1 completed today, got %d", stats.CompletedToday)
	}
	want := 2.0 / 3.0
	if stats.CompletionRate < want-0.01 || stats.CompletionRate > want+0.01 {
		t.Errorf("expected completion rate ~%.2f, got %.2f", want, stats.CompletionRate)
	}
}

func TestHabitStatsUsesCache(t *testing.T) {
	svc, store := setupTestService(t)

	// Seed the cache with a snapshot that disagrees with the store
	cached := models.HabitStats{UserID: "user-1", TotalHabits: 42, GeneratedAt: time.Now()}
	if err := store.CacheHabitStats("user-1", cached); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	got, err := svc.HabitStats("user-1")
	if err != nil {
		t.Fatalf("HabitStats failed: %v", err)
	}
	if got.TotalHabits != 42 {
		t.Errorf("expected cached snapshot to be served, got %+v", got)
	}

	// Drop the cache: the next read recomputes from the (empty) store
	if err := store.CacheDelete("stats_user-1"); err != nil {
		t.Fatalf("failed to drop cache: %v", err)
	}
	got, err = svc.HabitStats("user-1")
	if err != nil {
		t.Fatalf("HabitStats failed: %v", err)
	}
	if got.TotalHabits != 0 {
		t.Errorf("expected recomputed stats from empty store, got %+v", got)
	}
}
