package database

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// FromSQL wraps an existing *sql.DB as both writer and reader using the
// postgres dialect. Tests use it with sqlmock.
func FromSQL(db *sql.DB) *Connections {
	bdb := bun.NewDB(db, pgdialect.New())
	return &Connections{Writer: bdb, Reader: bdb}
}
