package sqlite

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/evrwell/habitstore/internal/models"
)

func TestCacheSetAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	payload := map[string]int{"count": 7}
	if err := store.CacheSet("habits_user-1", payload, time.Hour); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	raw, err := store.CacheGet("habits_user-1")
	if err != nil {
		t.Fatalf("failed to get cache: %v", err)
	}
	if raw == nil {
		t.Fatal("expected cached value, got nil")
	}

	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("failed to decode cached value: %v", err)
	}
	if got["count"] != 7 {
		t.Errorf("expected count 7, got %d", got["count"])
	}
}

func TestCacheGetMissReturnsNil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	raw, err := store.CacheGet("no-such-key")
	if err != nil {
		t.Fatalf("expected nil error for cache miss, got %v", err)
	}
	if raw != nil {
		t.Errorf("expected nil on miss, got %s", raw)
	}
}

func TestCacheSetRejectsNonPositiveTTL(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.CacheSet("key", "value", 0); err == nil {
		t.Error("expected error for zero TTL, got nil")
	}
	if err := store.CacheSet("key", "value", -time.Minute); err == nil {
		t.Error("expected error for negative TTL, got nil")
	}
}

func TestCacheGetExpiredReturnsNilWithoutDeleting(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now()
	store.now = func() time.Time { return base }

	if err := store.CacheSet("key", "value", time.Minute); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	// Jump past the TTL: the read reports absence but leaves the row
	store.now = func() time.Time { return base.Add(2 * time.Minute) }

	raw, err := store.CacheGet("key")
	if err != nil {
		t.Fatalf("failed to get cache: %v", err)
	}
	if raw != nil {
		t.Errorf("expected expired entry to read as absent, got %s", raw)
	}

	count, err := store.CountRows("cache")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected expired row to remain until swept, got %d rows", count)
	}
}

func TestClearExpiredCache(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now()
	store.now = func() time.Time { return base }

	if err := store.CacheSet("short", "a", time.Minute); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}
	if err := store.CacheSet("long", "b", time.Hour); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	store.now = func() time.Time { return base.Add(10 * time.Minute) }

	purged, err := store.ClearExpiredCache()
	if err != nil {
		t.Fatalf("ClearExpiredCache failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged entry, got %d", purged)
	}

	raw, err := store.CacheGet("long")
	if err != nil {
		t.Fatalf("failed to get cache: %v", err)
	}
	if raw == nil {
		t.Error("expected unexpired entry to survive the sweep")
	}

	count, err := store.CountRows("cache")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 cache row after sweep, got %d", count)
	}
}

func TestCacheDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.CacheSet("key", "value", time.Hour); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}
	if err := store.CacheDelete("key"); err != nil {
		t.Fatalf("failed to delete cache entry: %v", err)
	}

	raw, err := store.CacheGet("key")
	if err != nil {
		t.Fatalf("failed to get cache: %v", err)
	}
	if raw != nil {
		t.Errorf("expected deleted entry to be absent, got %s", raw)
	}
}

func TestCacheHabitStatsRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	stats := models.HabitStats{
		UserID:         "user-1",
		TotalHabits:    5,
		ActiveHabits:   4,
		CompletedToday: 2,
		CompletionRate: 0.8,
		LongestStreak:  12,
		GeneratedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := store.CacheHabitStats("user-1", stats); err != nil {
		t.Fatalf("failed to cache stats: %v", err)
	}

	got, err := store.GetCachedHabitStats("user-1")
	if err != nil {
		t.Fatalf("failed to get cached stats: %v", err)
	}
	if got == nil {
		t.Fatal("expected cached stats, got nil")
	}
	if got.TotalHabits != 5 || got.CompletionRate != 0.8 || got.LongestStreak != 12 {
		t.Errorf("stats do not round-trip: got %+v", got)
	}

	missing, err := store.GetCachedHabitStats("user-2")
	if err != nil {
		t.Fatalf("expected nil error for missing stats, got %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for uncached user, got %+v", missing)
	}
}
