// Package migrations embeds the SQLite schema applied at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// InitialSchema names the first schema migration.
const InitialSchema = "001_initial_schema.up.sql"
