// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aristath/stockledger/pkg/embedded"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver
	_ "modernc.org/sqlite"          // Pure Go SQLite driver
)

// Driver names a registered database/sql driver
type Driver string

const (
	// DriverSQLite is the pure Go modernc.org/sqlite driver (default)
	DriverSQLite Driver = "sqlite"
	// DriverSQLite3 is the cgo mattn/go-sqlite3 driver
	DriverSQLite3 Driver = "sqlite3"
	// DriverPostgres is the lib/pq driver
	DriverPostgres Driver = "postgres"
)

// Dialect returns the schema dialect for the driver.
func (d Driver) Dialect() string {
	if d == DriverPostgres {
		return "postgres"
	}
	return "sqlite"
}

// Valid reports whether d is a supported driver.
func (d Driver) Valid() bool {
	switch d {
	case DriverSQLite, DriverSQLite3, DriverPostgres:
		return true
	}
	return false
}

// DatabaseProfile defines different configuration profiles for databases
type DatabaseProfile string

const (
	// ProfileLedger - Maximum safety for the investment ledger
	ProfileLedger DatabaseProfile = "ledger"
	// ProfileStandard - Balanced configuration
	ProfileStandard DatabaseProfile = "standard"
)

// DB wraps the database connection with production-grade configuration
type DB struct {
	conn    *sqlx.DB
	driver  Driver
	path    string
	profile DatabaseProfile
	name    string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Driver  Driver
	Path    string // SQLite file path
	DSN     string // PostgreSQL connection string
	Profile DatabaseProfile
	Name    string // Friendly name for logging (e.g., "ledger")
}

// New creates a new database connection with production-grade configuration
func New(cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if !cfg.Driver.Valid() {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}

	var connStr string
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN for %s", cfg.Name)
		}
		connStr = cfg.DSN
	default:
		// Ensure directory exists - resolve to absolute path to avoid relative path issues
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
		connStr = buildConnectionString(cfg.Driver, cfg.Path, cfg.Profile)
	}

	conn, err := sqlx.Open(string(cfg.Driver), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn.DB, cfg.Driver)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn:    conn,
		driver:  cfg.Driver,
		path:    cfg.Path,
		profile: cfg.Profile,
		name:    cfg.Name,
	}, nil
}

// NewFromConn wraps an existing connection, e.g. one backed by go-sqlmock
func NewFromConn(conn *sql.DB, driver Driver, name string) *DB {
	return &DB{
		conn:    sqlx.NewDb(conn, string(driver)),
		driver:  driver,
		profile: ProfileStandard,
		name:    name,
	}
}

// buildConnectionString creates the SQLite connection string with profile-specific PRAGMAs.
// modernc.org/sqlite takes _pragma=name(value); mattn/go-sqlite3 takes _name=value.
func buildConnectionString(driver Driver, path string, profile DatabaseProfile) string {
	synchronous := "NORMAL"
	if profile == ProfileLedger {
		synchronous = "FULL" // Fsync after every write
	}

	var params []string
	if driver == DriverSQLite3 {
		params = []string{
			"_journal_mode=WAL",
			"_synchronous=" + synchronous,
			"_foreign_keys=on",
			"_busy_timeout=5000",
		}
	} else {
		params = []string{
			"_pragma=journal_mode(WAL)",
			"_pragma=synchronous(" + synchronous + ")",
			"_pragma=foreign_keys(1)",
			"_pragma=busy_timeout(5000)",
			"_pragma=cache_size(-64000)", // 64MB cache (negative = KB)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// configureConnectionPool sets up connection pool for long-term operation
func configureConnectionPool(conn *sql.DB, driver Driver) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	if driver == DriverPostgres {
		// Server-side connections are recycled sooner
		conn.SetConnMaxLifetime(time.Hour)
		conn.SetConnMaxIdleTime(10 * time.Minute)
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sqlx connection
// Used by repositories to execute queries
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Driver returns the configured driver
func (db *DB) Driver() Driver {
	return db.driver
}

// Profile returns the database profile
func (db *DB) Profile() DatabaseProfile {
	return db.profile
}

// Path returns the database file path (empty for postgres)
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the embedded schema for the connection's dialect.
// Every statement is idempotent, so Migrate can run on each start.
func (db *DB) Migrate() error {
	content, err := embedded.Schema(db.driver.Dialect())
	if err != nil {
		return err
	}

	return WithTransaction(context.Background(), db.conn, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute %s schema for %s: %w", db.driver.Dialect(), db.name, err)
		}
		return nil
	})
}

// WithTransaction executes a function within a database transaction.
// It handles begin, commit, rollback, panic recovery, and error wrapping automatically.
// If the function returns an error or panics, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Use named return variable to capture panic value
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		} else if err != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback also failed: %v)", err, rollbackErr)
			} else {
				err = fmt.Errorf("transaction failed: %w", err)
			}
		} else {
			if commitErr := tx.Commit(); commitErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck performs a comprehensive health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed for %s: %w", db.name, err)
	}

	if db.driver == DriverPostgres {
		var one int
		if err := db.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("probe query failed for %s: %w", db.name, err)
		}
		return nil
	}

	var integrityResult string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		return fmt.Errorf("integrity check query failed for %s: %w", db.name, err)
	}
	if integrityResult != "ok" {
		return fmt.Errorf("integrity check failed for %s: %s", db.name, integrityResult)
	}

	return nil
}

// QuickCheck performs a quick health check (just ping, no integrity check)
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Stats returns database statistics
type Stats struct {
	Driver          string `json:"driver"`
	SizeBytes       int64  `json:"size_bytes,omitempty"`     // Database file size
	WALSizeBytes    int64  `json:"wal_size_bytes,omitempty"` // WAL file size
	PageCount       int64  `json:"page_count,omitempty"`
	PageSize        int64  `json:"page_size,omitempty"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
}

// GetStats retrieves database statistics
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	pool := db.conn.Stats()
	stats := &Stats{
		Driver:          string(db.driver),
		OpenConnections: pool.OpenConnections,
		InUse:           pool.InUse,
		Idle:            pool.Idle,
	}

	if db.driver == DriverPostgres {
		return stats, nil
	}

	if fileInfo, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = fileInfo.Size()
	}
	if fileInfo, err := os.Stat(db.path + "-wal"); err == nil {
		stats.WALSizeBytes = fileInfo.Size()
	}

	if err := db.conn.QueryRowContext(ctx, "PRAGMA page_count").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx, "PRAGMA page_size").Scan(&stats.PageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}

	return stats, nil
}
