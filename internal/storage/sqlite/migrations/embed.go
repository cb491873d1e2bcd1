package migrations

import "embed"

// FS contains embedded SQLite migrations for world state storage.
//
//go:embed *.sql
var FS embed.FS
