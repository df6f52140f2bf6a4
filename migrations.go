package chatline

import "embed"

// MigrationsFS holds the archive schema migrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
