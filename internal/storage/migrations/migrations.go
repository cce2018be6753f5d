// Package migrations embeds the goose schema migrations for the SQL debt
// store, one directory per dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
