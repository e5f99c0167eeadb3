package migrations

import "embed"

// FS holds one directory of numbered SQL migrations per database driver.
//
//go:embed mysql/*.sql pgx/*.sql sqlite3/*.sql
var FS embed.FS
