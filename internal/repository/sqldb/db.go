// Package sqldb implements the repository interfaces on top of sqlx.
//
// TWO DRIVERS, ONE CODE PATH:
// Every query is written once with "?" placeholders and passed through
// sqlx's Rebind, which rewrites them to "$1, $2, ..." for PostgreSQL.
//
//	driver "sqlite"   → modernc.org/sqlite (pure Go, no CGo), file or ":memory:"
//	driver "postgres" → github.com/lib/pq
//
// The schema differs only in the timestamp column type, so the DDL is a
// single template (see schema.go).
//
// SQLITE AND CONNECTIONS:
// Each connection to ":memory:" is its own empty database, and SQLite only
// allows one writer at a time anyway, so the pool is capped at a single
// connection. The consequence is that inside a transaction every statement
// must go through the *sqlx.Tx; asking the pool for a second connection
// would wait forever.
//
// TIMESTAMPS:
// All times are written in UTC. SQLite stores them as text, and text of a
// single fixed offset sorts in time order, which keeps range filters on
// punched_at correct.
package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// sqlx knows "sqlite3" (mattn) but not modernc's driver name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB holds the connection pool and implements repository.Store.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// New opens the database, applies connection settings and runs migrations.
//
//	sqldb.New("sqlite", "data/punchclock.db")
//	sqldb.New("sqlite", ":memory:")
//	sqldb.New("postgres", "postgres://punchclock@localhost/punchclock?sslmode=disable")
func New(driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("sqldb: unsupported driver %q", driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqldb: opening %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqldb: pinging database: %w", err)
	}

	if driver == DriverSQLite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("sqldb: %s: %w", pragma, err)
			}
		}
	}

	db := &DB{conn: conn, driver: driver}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqldb: running migrations: %w", err)
	}

	return db, nil
}

// Driver returns the driver name the database was opened with.
func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping is used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
