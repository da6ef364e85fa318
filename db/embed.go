package db

import "embed"

// Migrations holds the goose SQL migrations so `runner migrate` works
// regardless of the current working directory.
//
//go:embed migrations/sql/*.sql
var Migrations embed.FS

// MigrationsDir is the path of the migrations inside Migrations.
const MigrationsDir = "migrations/sql"
