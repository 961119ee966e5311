package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evrwell/habitstore/internal/constants"
	"github.com/evrwell/habitstore/internal/models"
)

// CacheSet stores a JSON-encoded value under key, overwriting any existing
// entry. The TTL must be positive so expires_ms > created_ms always holds.
func (s *Store) CacheSet(key string, data any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload for %s: %w", key, err)
	}

	nowMs := s.now().UnixMilli()
	_, err = s.db.Exec(`
		INSERT INTO cache (key, data, created_ms, expires_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			created_ms = excluded.created_ms,
			expires_ms = excluded.expires_ms`,
		key, string(payload), nowMs, nowMs+ttl.Milliseconds())

	return err
}

// CacheGet returns the stored payload, or nil once the entry has logically
// expired. Expiry here is a read-time check only; the row stays until
// ClearExpiredCache sweeps it.
func (s *Store) CacheGet(key string) (json.RawMessage, error) {
	row := s.db.QueryRow("SELECT key, data, created_ms, expires_ms FROM cache WHERE key = ?", key)

	var item models.CachedItem
	var data string
	if err := row.Scan(&item.Key, &data, &item.Timestamp, &item.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	item.Data = json.RawMessage(data)

	if item.Expired(s.now().UnixMilli()) {
		return nil, nil
	}

	return item.Data, nil
}

// CacheDelete removes a single entry.
func (s *Store) CacheDelete(key string) error {
	_, err := s.db.Exec("DELETE FROM cache WHERE key = ?", key)
	return err
}

// ClearExpiredCache physically purges every row whose expiry has passed and
// returns the number removed. Rows still inside their TTL are untouched.
func (s *Store) ClearExpiredCache() (int, error) {
	result, err := s.db.Exec("DELETE FROM cache WHERE expires_ms <= ?", s.now().UnixMilli())
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// CacheHabitStats memoizes a user's computed statistics under the
// conventional stats_{userID} key with the default stats TTL.
func (s *Store) CacheHabitStats(userID string, stats models.HabitStats) error {
	return s.CacheSet(constants.StatsCacheKeyPrefix+userID, stats, constants.DefaultStatsTTL)
}

// GetCachedHabitStats returns the memoized statistics, or nil on a miss or
// after expiry.
func (s *Store) GetCachedHabitStats(userID string) (*models.HabitStats, error) {
	raw, err := s.CacheGet(constants.StatsCacheKeyPrefix + userID)
	if err != nil || raw == nil {
		return nil, err
	}

	var stats models.HabitStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached stats for %s: %w", userID, err)
	}
	return &stats, nil
}
