package sqlite

import (
	"testing"
	"time"

	"github.com/evrwell/habitstore/internal/models"
)

func TestSaveAndGetHabitStreak(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	streak := models.HabitStreak{
		ID:               "streak-1",
		HabitID:          "habit-1",
		UserID:           "user-1",
		CurrentStreak:    3,
		LongestStreak:    7,
		TotalCompletions: 21,
		LastCompletedDay: "2026-08-30",
		UpdatedAt:        time.Now().UTC().Truncate(time.Second),
	}
	if err := store.SaveHabitStreak(streak); err != nil {
		t.Fatalf("failed to save streak: %v", err)
	}

	got, err := store.GetHabitStreak("habit-1", "user-1")
	if err != nil {
		t.Fatalf("failed to get streak: %v", err)
	}
	if got == nil {
		t.Fatal("expected streak, got nil")
	}
	if got.CurrentStreak != 3 || got.LongestStreak != 7 || got.TotalCompletions != 21 {
		t.Errorf("streak fields do not round-trip: got %+v", got)
	}
	if got.LastCompletedDay != "2026-08-30" {
		t.Errorf("expected last completed day 2026-08-30, got %s", got.LastCompletedDay)
	}
}

func TestSaveHabitStreakUpsertsPerHabitUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	streak := models.HabitStreak{
		ID:            "streak-1",
		HabitID:       "habit-1",
		UserID:        "user-1",
		CurrentStreak: 3,
		LongestStreak: 3,
		UpdatedAt:     time.Now(),
	}
	if err := store.SaveHabitStreak(streak); err != nil {
		t.Fatalf("failed to save streak: %v", err)
	}

	streak.ID = "streak-2"
	streak.CurrentStreak = 4
	streak.LongestStreak = 4
	if err := store.SaveHabitStreak(streak); err != nil {
		t.Fatalf("failed to re-save streak: %v", err)
	}

	count, err := store.CountRows("habit_streaks")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one streak row per habit+user, got %d", count)
	}

	got, err := store.GetHabitStreak("habit-1", "user-1")
	if err != nil {
		t.Fatalf("failed to get streak: %v", err)
	}
	if got.CurrentStreak != 4 {
		t.Errorf("expected updated streak 4, got %d", got.CurrentStreak)
	}
}

func TestGetHabitStreakAbsentReturnsNil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.GetHabitStreak("habit-1", "user-1")
	if err != nil {
		t.Fatalf("expected nil error for absent streak, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil streak, got %+v", got)
	}
}
