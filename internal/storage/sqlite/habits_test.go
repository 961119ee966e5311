package sqlite

import (
	"testing"

	"github.com/evrwell/habitstore/internal/models"
	"github.com/evrwell/habitstore/internal/storage"
)

func TestSaveAndGetHabit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	habit := testHabit("habit-1", "user-1")
	if err := store.SaveHabit(habit, true); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got == nil {
		t.Fatal("expected habit, got nil")
	}
	if got.Name != habit.Name || got.Category != habit.Category || got.UserID != habit.UserID {
		t.Errorf("habit fields do not round-trip: got %+v", got)
	}
	if !got.Active {
		t.Error("expected habit to be active")
	}
}

func TestGetHabitAbsentReturnsNil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.GetHabit("no-such-habit")
	if err != nil {
		t.Fatalf("expected nil error for absent habit, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil habit, got %+v", got)
	}
}

func TestSaveHabitUpsertsInPlace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	habit := testHabit("habit-1", "user-1")
	if err := store.SaveHabit(habit, true); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	habit.Name = "Evening run"
	habit.Category = "cardio"
	if err := store.SaveHabit(habit, true); err != nil {
		t.Fatalf("failed to re-save habit: %v", err)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.Name != "Evening run" || got.Category != "cardio" {
		t.Errorf("upsert did not update fields: got %+v", got)
	}

	count, err := store.CountRows("habits")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 habit row after upsert, got %d", count)
	}
}

func TestUnsyncedHabitGetsLocalID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.SaveHabit(testHabit("habit-local", "user-1"), false); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}
	if err := store.SaveHabit(testHabit("habit-server", "user-1"), true); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	unsynced, err := store.GetUnsyncedHabits()
	if err != nil {
		t.Fatalf("failed to get unsynced habits: %v", err)
	}
	if len(unsynced) != 1 {
		t.Fatalf("expected 1 unsynced habit, got %d", len(unsynced))
	}
	if unsynced[0].ID != "habit-local" {
		t.Errorf("expected habit-local, got %s", unsynced[0].ID)
	}
	if unsynced[0].LocalID == "" {
		t.Error("expected unsynced habit to carry a local ID")
	}
	if unsynced[0].Synced {
		t.Error("expected unsynced habit to have synced=false")
	}
}

func TestMarkHabitDeleted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	habit := testHabit("habit-1", "user-1")
	if err := store.SaveHabit(habit, true); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	if err := store.MarkHabitDeleted(habit.ID); err != nil {
		t.Fatalf("failed to mark habit deleted: %v", err)
	}

	// Reads treat the soft-deleted row as absent
	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got != nil {
		t.Errorf("expected deleted habit to be hidden, got %+v", got)
	}

	habits, err := store.GetHabits("user-1", storage.HabitQuery{})
	if err != nil {
		t.Fatalf("failed to get habits: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("deleted habit should not appear in GetHabits, got %d", len(habits))
	}

	// But the row survives for the sync pass, flagged as unsynced
	unsynced, err := store.GetUnsyncedHabits()
	if err != nil {
		t.Fatalf("failed to get unsynced habits: %v", err)
	}
	if len(unsynced) != 1 {
		t.Fatalf("expected deleted habit in unsynced set, got %d", len(unsynced))
	}
	if !unsynced[0].Deleted {
		t.Error("expected unsynced habit to carry deleted=true")
	}
}

func TestMarkHabitDeletedNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.MarkHabitDeleted("no-such-habit"); err == nil {
		t.Error("expected error marking absent habit deleted, got nil")
	}
}

func TestSaveHabitResurrectsDeleted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	habit := testHabit("habit-1", "user-1")
	if err := store.SaveHabit(habit, true); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}
	if err := store.MarkHabitDeleted(habit.ID); err != nil {
		t.Fatalf("failed to mark habit deleted: %v", err)
	}

	// A fresh server copy overwrites the tombstone
	if err := store.SaveHabit(habit, true); err != nil {
		t.Fatalf("failed to re-save habit: %v", err)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got == nil {
		t.Fatal("expected re-saved habit to be visible again")
	}
}

func TestDeleteHabitIsHardDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	habit := testHabit("habit-1", "user-1")
	if err := store.SaveHabit(habit, false); err != nil {
		t.Fatalf("failed to save habit: %v", err)
	}

	if err := store.DeleteHabit(habit.ID); err != nil {
		t.Fatalf("failed to delete habit: %v", err)
	}

	count, err := store.CountRows("habits")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 habit rows after hard delete, got %d", count)
	}

	unsynced, err := store.GetUnsyncedHabits()
	if err != nil {
		t.Fatalf("failed to get unsynced habits: %v", err)
	}
	if len(unsynced) != 0 {
		t.Errorf("hard delete must not leave sync bookkeeping, got %d rows", len(unsynced))
	}
}

func TestGetHabitsFilters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	fitness := testHabit("habit-1", "user-1")
	fitness.Category = "fitness"

	mind := testHabit("habit-2", "user-1")
	mind.Name = "Meditate"
	mind.Category = "mindfulness"

	archived := testHabit("habit-3", "user-1")
	archived.Name = "Old habit"
	archived.Category = "fitness"
	archived.Active = false
	archived.Archived = true

	other := testHabit("habit-4", "user-2")

	if err := store.SaveHabits([]models.Habit{fitness, mind, archived, other}, true); err != nil {
		t.Fatalf("failed to save habits: %v", err)
	}

	t.Run("by user", func(t *testing.T) {
		habits, err := store.GetHabits("user-1", storage.HabitQuery{})
		if err != nil {
			t.Fatalf("GetHabits failed: %v", err)
		}
		if len(habits) != 3 {
			t.Errorf("expected 3 habits for user-1, got %d", len(habits))
		}
	})

	t.Run("by category", func(t *testing.T) {
		habits, err := store.GetHabits("user-1", storage.HabitQuery{Category: "fitness"})
		if err != nil {
			t.Fatalf("GetHabits failed: %v", err)
		}
		if len(habits) != 2 {
			t.Errorf("expected 2 fitness habits, got %d", len(habits))
		}
	})

	t.Run("active only", func(t *testing.T) {
		active := true
		habits, err := store.GetHabits("user-1", storage.HabitQuery{Active: &active})
		if err != nil {
			t.Fatalf("GetHabits failed: %v", err)
		}
		if len(habits) != 2 {
			t.Errorf("expected 2 active habits, got %d", len(habits))
		}
	})

	t.Run("unarchived only", func(t *testing.T) {
		notArchived := false
		habits, err := store.GetHabits("user-1", storage.HabitQuery{Archived: &notArchived})
		if err != nil {
			t.Fatalf("GetHabits failed: %v", err)
		}
		if len(habits) != 2 {
			t.Errorf("expected 2 unarchived habits, got %d", len(habits))
		}
	})
}
