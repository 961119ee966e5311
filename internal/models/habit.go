package models

import "time"

// LogStatus is the outcome recorded for a habit on a given day.
type LogStatus string

const (
	StatusCompleted   LogStatus = "completed"
	StatusPartial     LogStatus = "partial"
	StatusMissed      LogStatus = "missed"
	StatusSkipped     LogStatus = "skipped"
	StatusRescheduled LogStatus = "rescheduled"
	StatusSick        LogStatus = "sick"
)

// Habit is the server-shape habit record, matching the remote API contract.
type Habit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Streak    int       `json:"streak"`
	StartDate string    `json:"start_date,omitempty"` // YYYY-MM-DD format
	Active    bool      `json:"active"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HabitLog is a single day's record of a habit. At most one log is current
// per (habit_id, day) pair; later writes for the same day overwrite in place.
type HabitLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"date"` // YYYY-MM-DD format
	Status    LogStatus `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HabitStreak holds streak metrics for one (habit_id, user_id) pair.
type HabitStreak struct {
	ID               string    `json:"id"`
	HabitID          string    `json:"habit_id"`
	UserID           string    `json:"user_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalCompletions int       `json:"total_completions"`
	LastCompletedDay string    `json:"last_completed_day,omitempty"` // YYYY-MM-DD format
	UpdatedAt        time.Time `json:"updated_at"`
}

// HabitStats is a computed per-user statistics snapshot. It is expensive to
// derive, so callers memoize it through the TTL cache.
type HabitStats struct {
	UserID         string    `json:"user_id"`
	TotalHabits    int       `json:"total_habits"`
	ActiveHabits   int       `json:"active_habits"`
	CompletedToday int       `json:"completed_today"`
	CompletionRate float64   `json:"completion_rate"` // completed / logged over the window
	LongestStreak  int       `json:"longest_streak"`
	GeneratedAt    time.Time `json:"generated_at"`
}
