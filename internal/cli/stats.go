package cli

import (
	"fmt"
)

type StatsCmd struct {
	Refresh bool `help:"Recompute instead of serving the cached snapshot."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	if c.Refresh {
		s, err := ctx.Stats.ComputeHabitStats(ctx.UserID)
		if err != nil {
			return err
		}
		if err := ctx.Store.CacheHabitStats(ctx.UserID, s); err != nil {
			return err
		}
		return printStats(s.UserID, s.TotalHabits, s.ActiveHabits, s.CompletedToday, s.CompletionRate, s.LongestStreak)
	}

	s, err := ctx.Stats.HabitStats(ctx.UserID)
	if err != nil {
		return err
	}
	return printStats(s.UserID, s.TotalHabits, s.ActiveHabits, s.CompletedToday, s.CompletionRate, s.LongestStreak)
}

func printStats(userID string, total, active, completedToday int, rate float64, longest int) error {
	fmt.Println(HeaderStyle.Render(fmt.Sprintf("Habit stats for %s", userID)))
	fmt.Printf("  Total habits:     %d\n", total)
	fmt.Printf("  Active habits:    %d\n", active)
	fmt.Printf("  Completed today:  %d\n", completedToday)
	fmt.Printf("  Completion rate:  %.0f%%\n", rate*100)
	fmt.Printf("  Longest streak:   %d days\n", longest)
	return nil
}
