package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evrwell/habitstore/internal/models"
)

// SaveHabitStreak upserts the single streak row for the record's
// (habit_id, user_id) pair.
func (s *Store) SaveHabitStreak(streak models.HabitStreak) error {
	var lastDay sql.NullString
	if streak.LastCompletedDay != "" {
		lastDay = sql.NullString{String: streak.LastCompletedDay, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habit_streaks (id, habit_id, user_id, current_streak, longest_streak,
		                           total_completions, last_completed_day, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			total_completions = excluded.total_completions,
			last_completed_day = excluded.last_completed_day,
			updated_at = excluded.updated_at`,
		streak.ID, streak.HabitID, streak.UserID, streak.CurrentStreak, streak.LongestStreak,
		streak.TotalCompletions, lastDay, streak.UpdatedAt.Format(time.RFC3339))

	return err
}

// GetHabitStreak returns the streak row for the pair, or nil if none exists.
func (s *Store) GetHabitStreak(habitID, userID string) (*models.HabitStreak, error) {
	row := s.db.QueryRow(`
		SELECT id, habit_id, user_id, current_streak, longest_streak,
		       total_completions, last_completed_day, updated_at
		FROM habit_streaks WHERE habit_id = ? AND user_id = ?`, habitID, userID)

	var st models.HabitStreak
	var lastDay sql.NullString
	var updatedAt string

	err := row.Scan(&st.ID, &st.HabitID, &st.UserID, &st.CurrentStreak, &st.LongestStreak,
		&st.TotalCompletions, &lastDay, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if lastDay.Valid {
		st.LastCompletedDay = lastDay.String
	}
	st.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for streak %s: %w", st.ID, err)
	}

	return &st, nil
}
