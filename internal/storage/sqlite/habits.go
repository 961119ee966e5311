package sqlite

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

// SaveHabit upserts by primary key and records the given sync state. A
// re-save clears any prior soft delete: writing a habit means it exists
// again locally. An existing local_id survives the upsert; brand-new
// unsynced rows get one assigned for later reconciliation.
func (s *Store) SaveHabit(habit models.Habit, synced bool) error {
	var startDate sql.NullString
	if habit.StartDate != "" {
		startDate = sql.NullString{String: habit.StartDate, Valid: true}
	}

	var localID sql.NullString
	if !synced {
		localID = sql.NullString{String: uuid.New().String(), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (id, user_id, name, category, streak, start_date, active, archived,
		                    created_at, updated_at, synced, local_id, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
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
			deleted = 0`,
		habit.ID, habit.UserID, habit.Name, habit.Category, habit.Streak, startDate,
		habit.Active, habit.Archived,
		habit.CreatedAt.Format(time.RFC3339), habit.UpdatedAt.Format(time.RFC3339),
		synced, localID)

	return err
}

// SaveHabits bulk-upserts in a single transaction, so a partial failure
// rolls the whole batch back.
func (s *Store) SaveHabits(habits []models.Habit, synced bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO habits (id, user_id, name, category, streak, start_date, active, archived,
		                    created_at, updated_at, synced, local_id, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
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
			deleted = 0`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, habit := range habits {
		var startDate sql.NullString
		if habit.StartDate != "" {
			startDate = sql.NullString{String: habit.StartDate, Valid: true}
		}
		var localID sql.NullString
		if !synced {
			localID = sql.NullString{String: uuid.New().String(), Valid: true}
		}

		_, err := stmt.Exec(
			habit.ID, habit.UserID, habit.Name, habit.Category, habit.Streak, startDate,
			habit.Active, habit.Archived,
			habit.CreatedAt.Format(time.RFC3339), habit.UpdatedAt.Format(time.RFC3339),
			synced, localID)
		if err != nil {
			return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
		}
	}

	return tx.Commit()
}

// GetHabit returns nil for a missing or soft-deleted habit; deleted records
// never surface through this call.
func (s *Store) GetHabit(id string) (*models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND deleted = 0`, id)

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

// GetHabits lists a user's habits. A category narrows the scan to the
// (user_id, category) index; active/archived are post-filters.
func (s *Store) GetHabits(userID string, q storage.HabitQuery) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE user_id = ?"
	args := []any{userID}

	if q.Category != "" {
		query = "SELECT " + habitColumns + " FROM habits WHERE user_id = ? AND category = ?"
		args = append(args, q.Category)
	}
	if !q.IncludeDeleted {
		query += " AND deleted = 0"
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

// GetUnsyncedHabits returns every habit awaiting server reconciliation,
// soft-deleted rows included, in local shape.
func (s *Store) GetUnsyncedHabits() ([]models.LocalHabit, error) {
	rows, err := s.db.Query(`
		SELECT ` + habitColumns + `
		FROM habits WHERE synced = 0 ORDER BY updated_at`)
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

// MarkHabitDeleted soft-deletes: the row stays so a future sync pass can
// propagate the deletion.
func (s *Store) MarkHabitDeleted(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted = 1, synced = 0, updated_at = ? WHERE id = ?`,
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

// DeleteHabit hard-deletes the row, bypassing sync bookkeeping.
func (s *Store) DeleteHabit(id string) error {
	_, err := s.db.Exec("DELETE FROM habits WHERE id = ?", id)
	return err
}
