// Package schema holds the PostgreSQL schema as ordered tern migrations.
package schema

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var files embed.FS

// Migrations returns the migration files rooted so that tern finds
// 001_*.sql, 002_*.sql ... at the top level.
func Migrations() fs.FS {
	sub, err := fs.Sub(files, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
