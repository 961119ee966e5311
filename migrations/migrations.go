// Package migrations embeds the versioned schema migrations for each
// supported storage backend.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
