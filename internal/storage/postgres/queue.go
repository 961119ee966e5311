package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evrwell/habitstore/internal/models"
)

func (s *Store) EnqueueRequest(req models.QueuedRequest) error {
	var body sql.NullString
	if len(req.Body) > 0 {
		body = sql.NullString{String: string(req.Body), Valid: true}
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.Exec(`
		INSERT INTO request_queue (id, endpoint, method, body, priority, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.Endpoint, req.Method, body, req.Priority, req.Attempts,
		createdAt.UTC().Format(time.RFC3339))

	return err
}

func (s *Store) GetPendingRequests() ([]models.QueuedRequest, error) {
	rows, err := s.db.Query(`
		SELECT id, endpoint, method, body, priority, attempts, created_at
		FROM request_queue ORDER BY priority DESC, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.QueuedRequest
	for rows.Next() {
		var r models.QueuedRequest
		var body sql.NullString
		var createdAt string

		if err := rows.Scan(&r.ID, &r.Endpoint, &r.Method, &body, &r.Priority, &r.Attempts, &createdAt); err != nil {
			return nil, err
		}

		if body.Valid {
			r.Body = []byte(body.String)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for request %s: %w", r.ID, err)
		}

		reqs = append(reqs, r)
	}

	return reqs, rows.Err()
}

func (s *Store) DeleteRequest(id string) error {
	result, err := s.db.Exec("DELETE FROM request_queue WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("queued request with id %s not found", id)
	}

	return nil
}

func (s *Store) IncrementRequestAttempts(id string) error {
	result, err := s.db.Exec("UPDATE request_queue SET attempts = attempts + 1 WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("queued request with id %s not found", id)
	}

	return nil
}
