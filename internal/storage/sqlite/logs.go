package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evrwell/habitstore/internal/models"
	"github.com/evrwell/habitstore/internal/storage"
)

const logColumns = `id, habit_id, user_id, day, status, notes, created_at, updated_at,
       synced, local_id, deleted`

func scanLog(row rowScanner) (models.LocalHabitLog, error) {
	var l models.LocalHabitLog
	var status string
	var localID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&l.ID, &l.HabitID, &l.UserID, &l.Day, &status, &l.Notes,
		&createdAt, &updatedAt, &l.Synced, &localID, &l.Deleted,
	)
	if err != nil {
		return models.LocalHabitLog{}, err
	}

	l.Status = models.LogStatus(status)
	if localID.Valid {
		l.LocalID = localID.String
	}
	l.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.LocalHabitLog{}, fmt.Errorf("failed to parse created_at for log %s: %w", l.ID, err)
	}
	l.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.LocalHabitLog{}, fmt.Errorf("failed to parse updated_at for log %s: %w", l.ID, err)
	}

	return l, nil
}

// SaveHabitLog upserts by the (habit_id, day) composite key: a later write
// for the same habit and day overwrites the existing row in place and the
// stored row keeps its original id. Never appends a duplicate for the pair.
func (s *Store) SaveHabitLog(log models.HabitLog, synced bool) error {
	var localID sql.NullString
	if !synced {
		localID = sql.NullString{String: uuid.New().String(), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habit_logs (id, habit_id, user_id, day, status, notes,
		                        created_at, updated_at, synced, local_id, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			user_id = excluded.user_id,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at,
			synced = excluded.synced,
			local_id = habit_logs.local_id,
			deleted = 0`,
		log.ID, log.HabitID, log.UserID, log.Day, string(log.Status), log.Notes,
		log.CreatedAt.Format(time.RFC3339), log.UpdatedAt.Format(time.RFC3339),
		synced, localID)

	return err
}

// SaveHabitLogs bulk-upserts in a single transaction (all-or-nothing).
func (s *Store) SaveHabitLogs(logs []models.HabitLog, synced bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO habit_logs (id, habit_id, user_id, day, status, notes,
		                        created_at, updated_at, synced, local_id, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			user_id = excluded.user_id,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at,
			synced = excluded.synced,
			local_id = habit_logs.local_id,
			deleted = 0`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, log := range logs {
		var localID sql.NullString
		if !synced {
			localID = sql.NullString{String: uuid.New().String(), Valid: true}
		}

		_, err := stmt.Exec(
			log.ID, log.HabitID, log.UserID, log.Day, string(log.Status), log.Notes,
			log.CreatedAt.Format(time.RFC3339), log.UpdatedAt.Format(time.RFC3339),
			synced, localID)
		if err != nil {
			return fmt.Errorf("failed to save habit log %s: %w", log.ID, err)
		}
	}

	return tx.Commit()
}

// GetHabitLog returns nil for a missing or soft-deleted log.
func (s *Store) GetHabitLog(id string) (*models.HabitLog, error) {
	row := s.db.QueryRow(`
		SELECT `+logColumns+`
		FROM habit_logs WHERE id = ? AND deleted = 0`, id)

	l, err := scanLog(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	server := l.ToServer()
	return &server, nil
}

// GetHabitLogs lists a habit's logs, optionally bounded to a day range,
// most recent day first.
func (s *Store) GetHabitLogs(habitID string, q storage.LogQuery) ([]models.HabitLog, error) {
	query := "SELECT " + logColumns + " FROM habit_logs WHERE habit_id = ?"
	args := []any{habitID}

	if q.StartDay != "" {
		query += " AND day >= ?"
		args = append(args, q.StartDay)
	}
	if q.EndDay != "" {
		query += " AND day <= ?"
		args = append(args, q.EndDay)
	}
	if !q.IncludeDeleted {
		query += " AND deleted = 0"
	}
	query += " ORDER BY day DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.HabitLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l.ToServer())
	}

	return logs, rows.Err()
}

// GetHabitLogsByDay lists every log a user recorded on one day, via the
// (user_id, day) index.
func (s *Store) GetHabitLogsByDay(userID, day string) ([]models.HabitLog, error) {
	rows, err := s.db.Query(`
		SELECT `+logColumns+`
		FROM habit_logs WHERE user_id = ? AND day = ? AND deleted = 0
		ORDER BY created_at`, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.HabitLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l.ToServer())
	}

	return logs, rows.Err()
}

// GetUnsyncedHabitLogs returns every log awaiting server reconciliation,
// soft-deleted rows included, in local shape.
func (s *Store) GetUnsyncedHabitLogs() ([]models.LocalHabitLog, error) {
	rows, err := s.db.Query(`
		SELECT ` + logColumns + `
		FROM habit_logs WHERE synced = 0 ORDER BY updated_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.LocalHabitLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// MarkHabitLogDeleted soft-deletes a log.
func (s *Store) MarkHabitLogDeleted(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_logs SET deleted = 1, synced = 0, updated_at = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit log with id %s not found", id)
	}

	return nil
}
