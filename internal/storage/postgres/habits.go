package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evrwell/habitstore/internal/models"
	"github.com/evrwell/habitstore/internal/storage"
)

const habitColumns = `id, user_id, name, category, streak, start_date, active, archived,
       created_at, updated_at, synced, local_id, deleted`

const habitUpsert = `
INSERT INTO habits (id, user_id, name, category, streak, start_date, active, archived,
                    created_at, updated_at, synced, local_id, deleted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE)
ON CONFLICT (id) DO UPDATE SET
	user_id = excluded.user_id,
	name = excluded.name,
	category = excluded.category,
	streak = excluded.streak,
	start_date = excluded.start_date,
	active = excluded.active,
	archived = excluded.archived,
	updated_at = excluded.updated_at,
	synced = excluded.synced,
	local_id = habits.local_id,
	deleted = FALSE`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.LocalHabit, error) {
	var h models.LocalHabit
	var startDate, localID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Category, &h.Streak, &startDate, &h.Active, &h.Archived,
		&createdAt, &updatedAt, &h.Synced, &localID, &h.Deleted,
	)
	if err != nil {
		return models.LocalHabit{}, err
	}

	if startDate.Valid {
		h.StartDate = startDate.String
	}
	if localID.Valid {
		h.LocalID = localID.String
	}
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.LocalHabit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.LocalHabit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}

	return h, nil
}

func habitArgs(habit models.Habit, synced bool) []any {
	var startDate sql.NullString
	if habit.StartDate != "" {
		startDate = sql.NullString{String: habit.StartDate, Valid: true}
	}
	var localID sql.NullString
	if !synced {
		localID = sql.NullString{String: uuid.New().String(), Valid: true}
	}

	return []any{
		habit.ID, habit.UserID, habit.Name, habit.Category, habit.Streak, startDate,
		habit.Active, habit.Archived,
		habit.CreatedAt.Format(time.RFC3339), habit.UpdatedAt.Format(time.RFC3339),
		synced, localID,
	}
}

func (s *Store) SaveHabit(habit models.Habit, synced bool) error {
	_, err := s.db.Exec(habitUpsert, habitArgs(habit, synced)...)
	return err
}

func (s *Store) SaveHabits(habits []models.Habit, synced bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(habitUpsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, habit := range habits {
		if _, err := stmt.Exec(habitArgs(habit, synced)...); err != nil {
			return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetHabit(id string) (*models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE id = $1 AND NOT deleted`, id)

	h, err := scanHabit(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	server := h.ToServer()
	return &server, nil
}

func (s *Store) GetHabits(userID string, q storage.HabitQuery) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE user_id = $1"
	args := []any{userID}

	if q.Category != "" {
		query = "SELECT " + habitColumns + " FROM habits WHERE user_id = $1 AND category = $2"
		args = append(args, q.Category)
	}
	if !q.IncludeDeleted {
		query += " AND NOT deleted"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		if q.Active != nil && h.Active != *q.Active {
			continue
		}
		if q.Archived != nil && h.Archived != *q.Archived {
			continue
		}
		habits = append(habits, h.ToServer())
	}

	return habits, rows.Err()
}

func (s *Store) GetUnsyncedHabits() ([]models.LocalHabit, error) {
	rows, err := s.db.Query(`
		SELECT ` + habitColumns + `
		FROM habits WHERE NOT synced ORDER BY updated_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.LocalHabit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) MarkHabitDeleted(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted = TRUE, synced = FALSE, updated_at = $1 WHERE id = $2`,
		s.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit with id %s not found", id)
	}

	return nil
}

func (s *Store) DeleteHabit(id string) error {
	_, err := s.db.Exec("DELETE FROM habits WHERE id = $1", id)
	return err
}
