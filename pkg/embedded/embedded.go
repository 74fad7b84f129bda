// Package embedded provides assets compiled into the binaries.
package embedded

import (
	"embed"
	"fmt"
)

// Schemas holds the ledger schema for each supported SQL dialect:
//   - schemas/sqlite.sql   - modernc.org/sqlite and mattn/go-sqlite3
//   - schemas/postgres.sql - lib/pq
//
//go:embed schemas
var Schemas embed.FS

// Schema returns the schema script for a dialect ("sqlite" or "postgres").
func Schema(dialect string) ([]byte, error) {
	content, err := Schemas.ReadFile("schemas/" + dialect + ".sql")
	if err != nil {
		return nil, fmt.Errorf("no schema for dialect %q: %w", dialect, err)
	}
	return content, nil
}
