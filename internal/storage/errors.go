package storage

import "errors"

// ErrStorageUnavailable indicates the underlying engine cannot be opened,
// read, or written (missing file, quota, corruption). Lifecycle failures
// wrap this sentinel so the health manager can decide to self-heal.
var ErrStorageUnavailable = errors.New("storage unavailable")
