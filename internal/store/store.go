// Package store provides the database handle used by the reporting engine.
//
// Production reports run against the platform's postgres database, which is
// treated as read-only. Offline extracts live in sqlite snapshots that carry the
// same four tables and are created and populated through this package.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// TimeLayout is the text form of timestamps stored in sqlite snapshots. It sorts
// lexicographically in chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// ErrConnectivity reports that the database could not be opened or reached.
var ErrConnectivity = errors.New("database unreachable")

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store wraps a database connection.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database and verifies the connection with a ping.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q (must be %s or %s)", driver, DriverPostgres, DriverSQLite)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s database: %v", ErrConnectivity, driver, err)
	}

	if driver == DriverSQLite {
		// An in-memory database exists per connection, so keep exactly one.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	return &Store{db: db, driver: driver}, nil
}

// CreateSnapshot opens a sqlite snapshot at path and applies the schema if the
// database is new.
func CreateSnapshot(ctx context.Context, path string) (*Store, error) {
	s, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying handle.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// migrate applies the snapshot schema if not already at the current version.
func (s *Store) migrate(ctx context.Context) error {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		_, err = s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
		return err
	}
	if err != nil {
		return fmt.Errorf("checking schema version: %w", err)
	}

	var version int
	if err := s.db.GetContext(ctx, &version, "SELECT MAX(version) FROM schema_version"); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if version < currentSchemaVersion {
		return fmt.Errorf("snapshot schema version %d is older than %d", version, currentSchemaVersion)
	}

	return nil
}

// PostgresDSN builds a lib/pq connection string.
func PostgresDSN(host string, port int, name, user, password, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		host, port, quoteDSN(name), quoteDSN(user), quoteDSN(password), sslmode)
}

// quoteDSN quotes a connection string value when it is empty or contains
// characters lib/pq treats specially.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// FormatTime renders t the way sqlite snapshots store timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
