package models

import (
	"encoding/json"
	"time"
)

// QueuedRequest is a not-yet-confirmed mutation to replay against the server.
// The store only persists and lists these; draining the queue is an explicit
// extension point and lives outside the storage layer.
type QueuedRequest struct {
	ID        string          `json:"id"`
	Endpoint  string          `json:"endpoint"`
	Method    string          `json:"method"` // GET, POST, PUT, DELETE
	Body      json.RawMessage `json:"body,omitempty"`
	Priority  int             `json:"priority"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}
