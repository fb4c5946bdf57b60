package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the Postgres schema for challenges and the ledger.
var Migrations = migrate.NewMigrations()
