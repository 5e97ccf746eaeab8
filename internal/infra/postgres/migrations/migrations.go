// Package migrations holds the bun schema migrations for subjects and profiles.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
