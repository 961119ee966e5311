package habits

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evrwell/habitstore/internal/cli"
	"github.com/evrwell/habitstore/internal/models"
	"github.com/evrwell/habitstore/internal/storage"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" help:"List habits."`
	Log      HabitLogCmd      `cmd:"" help:"Record a habit outcome for a day."`
	History  HabitHistoryCmd  `cmd:"" help:"Show logged outcomes for a habit."`
	Today    HabitTodayCmd    `cmd:"" help:"Show today's logged outcomes."`
	Streak   HabitStreakCmd   `cmd:"" help:"Show or recompute a habit's streak."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit (soft delete, queued for sync)."`
	Purge    HabitPurgeCmd    `cmd:"" help:"Hard delete a habit row locally."`
	Unsynced HabitUnsyncedCmd `cmd:"" help:"List habits with unsynced local changes."`
}

type HabitAddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Category  string `help:"Habit category." default:"general"`
	StartDate string `help:"Start date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	startDate, err := cli.ResolveDay(c.StartDate)
	if err != nil {
		return err
	}

	now := time.Now()
	habit := models.Habit{
		ID:        uuid.New().String(),
		UserID:    ctx.UserID,
		Name:      c.Name,
		Category:  c.Category,
		StartDate: startDate,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Created locally, so the habit starts out unsynced.
	if err := ctx.Store.SaveHabit(habit, false); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s)\n", c.Name, habit.ID)
	return nil
}

type HabitListCmd struct {
	Category string `help:"Only show habits in this category."`
	Archived bool   `help:"Include archived habits."`
	Deleted  bool   `help:"Include soft-deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	q := storage.HabitQuery{
		Category:       c.Category,
		IncludeDeleted: c.Deleted,
	}
	if !c.Archived {
		archived := false
		q.Archived = &archived
	}

	habits, err := ctx.Store.GetHabits(ctx.UserID, q)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		status := ""
		if !habit.Active {
			status = cli.MutedStyle.Render(" [inactive]")
		}
		if habit.Archived {
			status += cli.MutedStyle.Render(" [archived]")
		}
		fmt.Printf("%s  %s%s  %s\n", habit.ID, habit.Name, status,
			cli.MutedStyle.Render(habit.Category))
	}

	return nil
}

type HabitLogCmd struct {
	HabitID string `arg:"" help:"Habit ID."`
	Status  string `arg:"" help:"Outcome: completed, partial, missed, skipped, rescheduled or sick." enum:"completed,partial,missed,skipped,rescheduled,sick"`
	Date    string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Notes   string `help:"Optional note for this entry." default:""`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	day, err := cli.ResolveDay(c.Date)
	if err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabit(c.HabitID)
	if err != nil {
		return err
	}
	if habit == nil {
		return fmt.Errorf("habit %s not found", c.HabitID)
	}

	now := time.Now()
	log := models.HabitLog{
		ID:        uuid.New().String(),
		HabitID:   habit.ID,
		UserID:    ctx.UserID,
		Day:       day,
		Status:    models.LogStatus(c.Status),
		Notes:     c.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctx.Store.SaveHabitLog(log, false); err != nil {
		return err
	}

	// Keep the streak row current with the new outcome.
	if _, err := ctx.Stats.RecomputeStreak(habit.ID, ctx.UserID); err != nil {
		return err
	}

	fmt.Printf("Logged %q as %s for %s\n", habit.Name, c.Status, day)
	return nil
}

type HabitHistoryCmd struct {
	HabitID string `arg:"" help:"Habit ID."`
	Days    int    `help:"Number of days to show." default:"14"`
}

func (c *HabitHistoryCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabit(c.HabitID)
	if err != nil {
		return err
	}
	if habit == nil {
		return fmt.Errorf("habit %s not found", c.HabitID)
	}

	startDay := time.Now().AddDate(0, 0, -c.Days).Format("2006-01-02")
	logs, err := ctx.Store.GetHabitLogs(habit.ID, storage.LogQuery{StartDay: startDay})
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		fmt.Printf("No entries for %q in the last %d days.\n", habit.Name, c.Days)
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(habit.Name))
	for _, log := range logs {
		note := ""
		if log.Notes != "" {
			note = "  " + cli.MutedStyle.Render(log.Notes)
		}
		fmt.Printf("  %s  %-12s%s\n", log.Day, log.Status, note)
	}

	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	today := time.Now().Format("2006-01-02")
	logs, err := ctx.Store.GetHabitLogsByDay(ctx.UserID, today)
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		fmt.Printf("No habits logged for %s.\n", today)
		return nil
	}

	fmt.Printf("Logged for %s:\n", today)
	for _, log := range logs {
		habit, err := ctx.Store.GetHabit(log.HabitID)
		if err != nil {
			return err
		}
		name := log.HabitID
		if habit != nil {
			name = habit.Name
		}
		fmt.Printf("  %-12s %s\n", log.Status, name)
	}

	return nil
}

type HabitStreakCmd struct {
	HabitID   string `arg:"" help:"Habit ID."`
	Recompute bool   `help:"Rebuild the streak from the full log history."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	if c.Recompute {
		streak, err := ctx.Stats.RecomputeStreak(c.HabitID, ctx.UserID)
		if err != nil {
			return err
		}
		printStreak(streak)
		return nil
	}

	streak, err := ctx.Store.GetHabitStreak(c.HabitID, ctx.UserID)
	if err != nil {
		return err
	}
	if streak == nil {
		fmt.Println("No streak recorded for this habit. Use --recompute to build one.")
		return nil
	}
	printStreak(*streak)
	return nil
}

func printStreak(streak models.HabitStreak) {
	fmt.Printf("Current streak:    %d days\n", streak.CurrentStreak)
	fmt.Printf("Longest streak:    %d days\n", streak.LongestStreak)
	fmt.Printf("Total completions: %d\n", streak.TotalCompletions)
	if streak.LastCompletedDay != "" {
		fmt.Printf("Last completed:    %s\n", streak.LastCompletedDay)
	}
}

type HabitDeleteCmd struct {
	HabitID string `arg:"" help:"Habit ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	if err := ctx.Store.MarkHabitDeleted(c.HabitID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit %s (will be removed from the server on next sync)\n", c.HabitID)
	return nil
}

type HabitPurgeCmd struct {
	HabitID string `arg:"" help:"Habit ID."`
}

func (c *HabitPurgeCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	if err := ctx.Store.DeleteHabit(c.HabitID); err != nil {
		return err
	}

	fmt.Printf("Purged habit %s from local storage\n", c.HabitID)
	return nil
}

type HabitUnsyncedCmd struct{}

func (c *HabitUnsyncedCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetUnsyncedHabits()
	if err != nil {
		return err
	}
	logs, err := ctx.Store.GetUnsyncedHabitLogs()
	if err != nil {
		return err
	}

	if len(habits) == 0 && len(logs) == 0 {
		fmt.Println("Everything is synced.")
		return nil
	}

	if len(habits) > 0 {
		fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%d unsynced habit(s)", len(habits))))
		for _, h := range habits {
			flag := ""
			if h.Deleted {
				flag = cli.MutedStyle.Render(" [pending delete]")
			}
			fmt.Printf("  %s  %s%s\n", h.ID, h.Name, flag)
		}
	}
	if len(logs) > 0 {
		fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%d unsynced log(s)", len(logs))))
		for _, l := range logs {
			flag := ""
			if l.Deleted {
				flag = cli.MutedStyle.Render(" [pending delete]")
			}
			fmt.Printf("  %s  %s %s%s\n", l.ID, l.Day, l.Status, flag)
		}
	}

	return nil
}
