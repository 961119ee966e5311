package models

import "encoding/json"

// CachedItem is one row of the generic TTL cache. Timestamps are Unix
// milliseconds. An item is logically expired once now >= ExpiresAt, even if
// it is still physically stored until a sweep runs.
type CachedItem struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt int64           `json:"expiresAt"`
}

// Expired reports whether the item is logically absent at the given time
// (Unix milliseconds).
func (c CachedItem) Expired(nowMs int64) bool {
	return nowMs >= c.ExpiresAt
}
