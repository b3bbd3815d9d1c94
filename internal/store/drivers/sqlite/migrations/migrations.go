// Package migrations holds the embedded SQLite schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
