package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/evrwell/habitstore/internal/constants"
	"github.com/evrwell/habitstore/internal/logger"
	"github.com/evrwell/habitstore/internal/models"
	"github.com/evrwell/habitstore/internal/storage"
)

// StatsWindowDays is how far back the completion rate looks.
const StatsWindowDays = 30

// Service derives per-user statistics and per-habit streaks from the log
// history. Stats are memoized through the store's TTL cache because the
// derivation scans every habit and log for the user.
type Service struct {
	store storage.Provider
	now   func() time.Time
}

func NewService(store storage.Provider) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// HabitStats returns the per-user statistics snapshot, serving from the
// cache when a fresh entry exists and recomputing otherwise. A cache
// write failure is logged and the computed value still returned.
func (s *Service) HabitStats(userID string) (models.HabitStats, error) {
	cached, err := s.store.GetCachedHabitStats(userID)
	if err != nil {
		return models.HabitStats{}, fmt.Errorf("failed to read cached stats: %w", err)
	}
	if cached != nil {
		return *cached, nil
	}

	computed, err := s.ComputeHabitStats(userID)
	if err != nil {
		return models.HabitStats{}, err
	}

	if err := s.store.CacheHabitStats(userID, computed); err != nil {
		logger.Warn("failed to cache habit stats", "user", userID, "error", err)
	}

	return computed, nil
}

// ComputeHabitStats derives the statistics snapshot from the store,
// bypassing the cache.
func (s *Service) ComputeHabitStats(userID string) (models.HabitStats, error) {
	habits, err := s.store.GetHabits(userID, storage.HabitQuery{})
	if err != nil {
		return models.HabitStats{}, fmt.Errorf("failed to load habits: %w", err)
	}

	today := s.now().Format(constants.DateFormat)
	windowStart := s.now().AddDate(0, 0, -StatsWindowDays).Format(constants.DateFormat)

	stats := models.HabitStats{
		UserID:      userID,
		TotalHabits: len(habits),
		GeneratedAt: s.now(),
	}

	var logged, completed int
	for _, habit := range habits {
		if habit.Active && !habit.Archived {
			stats.ActiveHabits++
		}

		logs, err := s.store.GetHabitLogs(habit.ID, storage.LogQuery{StartDay: windowStart, EndDay: today})
		if err != nil {
			return models.HabitStats{}, fmt.Errorf("failed to load logs for habit %s: %w", habit.ID, err)
		}

		for _, log := range logs {
			logged++
			if log.Status == models.StatusCompleted {
				completed++
				if log.Day == today {
					stats.CompletedToday++
				}
			}
		}

		streak, err := s.store.GetHabitStreak(habit.ID, userID)
		if err != nil {
			return models.HabitStats{}, fmt.Errorf("failed to load streak for habit %s: %w", habit.ID, err)
		}
		if streak != nil && streak.LongestStreak > stats.LongestStreak {
			stats.LongestStreak = streak.LongestStreak
		}
	}

	if logged > 0 {
		stats.CompletionRate = float64(completed) / float64(logged)
	}

	return stats, nil
}

// RecomputeStreak rebuilds the streak row for one habit from its full log
// history and persists the result. Returns the recomputed streak.
func (s *Service) RecomputeStreak(habitID, userID string) (models.HabitStreak, error) {
	logs, err := s.store.GetHabitLogs(habitID, storage.LogQuery{})
	if err != nil {
		return models.HabitStreak{}, fmt.Errorf("failed to load logs for habit %s: %w", habitID, err)
	}

	existing, err := s.store.GetHabitStreak(habitID, userID)
	if err != nil {
		return models.HabitStreak{}, err
	}

	streak := DeriveStreak(logs, s.now())
	streak.HabitID = habitID
	streak.UserID = userID
	streak.UpdatedAt = s.now()
	if existing != nil {
		streak.ID = existing.ID
	} else {
		streak.ID = uuid.New().String()
	}

	if err := s.store.SaveHabitStreak(streak); err != nil {
		return models.HabitStreak{}, fmt.Errorf("failed to save streak for habit %s: %w", habitID, err)
	}

	return streak, nil
}

// DeriveStreak computes streak metrics from a log history. A streak is a
// run of consecutive completed days; the current streak must reach today
// or yesterday relative to now, otherwise it is 0.
func DeriveStreak(logs []models.HabitLog, now time.Time) models.HabitStreak {
	var streak models.HabitStreak

	var days []string
	seen := make(map[string]bool)
	for _, log := range logs {
		if log.Status != models.StatusCompleted || seen[log.Day] {
			continue
		}
		seen[log.Day] = true
		days = append(days, log.Day)
		if log.Day > streak.LastCompletedDay {
			streak.LastCompletedDay = log.Day
		}
	}
	streak.TotalCompletions = len(days)
	if len(days) == 0 {
		return streak
	}

	sort.Strings(days)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if nextDay(days[i-1]) == days[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	streak.LongestStreak = longest

	today := now.Format(constants.DateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(constants.DateFormat)
	if streak.LastCompletedDay == today || streak.LastCompletedDay == yesterday {
		// The trailing run is still alive.
		current := 1
		for i := len(days) - 1; i > 0; i-- {
			if nextDay(days[i-1]) != days[i] {
				break
			}
			current++
		}
		streak.CurrentStreak = current
	}

	return streak
}

func nextDay(day string) string {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(constants.DateFormat)
}
