package postgres

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

const logUpsert = `
INSERT INTO habit_logs (id, habit_id, user_id, day, status, notes,
                        created_at, updated_at, synced, local_id, deleted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
ON CONFLICT (habit_id, day) DO UPDATE SET
	user_id = excluded.user_id,
	status = excluded.status,
	notes = excluded.notes,
	updated_at = excluded.updated_at,
	synced = excluded.synced,
	local_id = habit_logs.local_id,
	deleted = FALSE`

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

func logArgs(log models.HabitLog, synced bool) []any {
	var localID sql.NullString
	if !synced {
		localID = sql.NullString{String: uuid.New().String(), Valid: true}
	}

	return []any{
		log.ID, log.HabitID, log.UserID, log.Day, string(log.Status), log.Notes,
		log.CreatedAt.Format(time.RFC3339), log.UpdatedAt.Format(time.RFC3339),
		synced, localID,
	}
}

func (s *Store) SaveHabitLog(log models.HabitLog, synced bool) error {
	_, err := s.db.Exec(logUpsert, logArgs(log, synced)...)
	return err
}

func (s *Store) SaveHabitLogs(logs []models.HabitLog, synced bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(logUpsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, log := range logs {
		if _, err := stmt.Exec(logArgs(log, synced)...); err != nil {
			return fmt.Errorf("failed to save habit log %s: %w", log.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetHabitLog(id string) (*models.HabitLog, error) {
	row := s.db.QueryRow(`
		SELECT `+logColumns+`
		FROM habit_logs WHERE id = $1 AND NOT deleted`, id)

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

func (s *Store) GetHabitLogs(habitID string, q storage.LogQuery) ([]models.HabitLog, error) {
	query := "SELECT " + logColumns + " FROM habit_logs WHERE habit_id = $1"
	args := []any{habitID}

	if q.StartDay != "" {
		args = append(args, q.StartDay)
		query += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if q.EndDay != "" {
		args = append(args, q.EndDay)
		query += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	if !q.IncludeDeleted {
		query += " AND NOT deleted"
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

func (s *Store) GetHabitLogsByDay(userID, day string) ([]models.HabitLog, error) {
	rows, err := s.db.Query(`
		SELECT `+logColumns+`
		FROM habit_logs WHERE user_id = $1 AND day = $2 AND NOT deleted
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

func (s *Store) GetUnsyncedHabitLogs() ([]models.LocalHabitLog, error) {
	rows, err := s.db.Query(`
		SELECT ` + logColumns + `
		FROM habit_logs WHERE NOT synced ORDER BY updated_at`)
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

func (s *Store) MarkHabitLogDeleted(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_logs SET deleted = TRUE, synced = FALSE, updated_at = $1 WHERE id = $2`,
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
