// Package testing provides testing utilities and helpers for the stockledger project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/stockledger/internal/database"
)

// NewTestDB creates a temporary SQLite database with the ledger schema applied.
// Returns the database instance and a cleanup function that closes and removes it.
// The cleanup function is idempotent and can be called multiple times safely.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Using temporary files ensures each test gets its own isolated database
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Driver:  database.DriverSQLite,
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
}

// SeedStock inserts a stock row directly, bypassing the ledger.
// beta may be nil for a stock without a known beta.
func SeedStock(t *testing.T, db *database.DB, symbol string, price string, beta *string) {
	t.Helper()
	query := db.Conn().Rebind(`INSERT INTO stocks (symbol, company, price, market_cap, pe_ratio, beta) VALUES (?, ?, ?, ?, ?, ?)`)
	var betaArg interface{}
	if beta != nil {
		betaArg = *beta
	}
	if _, err := db.Conn().Exec(query, symbol, "Company for "+symbol, price, "Unknown", "0", betaArg); err != nil {
		t.Fatalf("Failed to seed stock %s: %v", symbol, err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Conn().Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
