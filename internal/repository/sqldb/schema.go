package sqldb

import (
	"fmt"
	"strings"
)

// schema is applied statement by statement on every start. All of it is
// idempotent (IF NOT EXISTS), so there is no migration table yet.
//
// {{ts}} is replaced by the dialect's timestamp type.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		email       TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL DEFAULT '',
		global_role TEXT NOT NULL DEFAULT 'user' CHECK (global_role IN ('user', 'superadmin')),
		created_at  {{ts}} NOT NULL,
		updated_at  {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS organizations (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		slug       TEXT NOT NULL UNIQUE,
		created_at {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS boards (
		id              TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations (id) ON DELETE CASCADE,
		name            TEXT NOT NULL,
		slug            TEXT NOT NULL,
		created_at      {{ts}} NOT NULL,
		updated_at      {{ts}} NOT NULL,
		UNIQUE (organization_id, slug)
	)`,

	`CREATE TABLE IF NOT EXISTS organization_memberships (
		user_id         TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		organization_id TEXT NOT NULL REFERENCES organizations (id) ON DELETE CASCADE,
		role            TEXT NOT NULL CHECK (role IN ('admin', 'member')),
		created_at      {{ts}} NOT NULL,
		PRIMARY KEY (user_id, organization_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_org_memberships_org ON organization_memberships (organization_id)`,

	`CREATE TABLE IF NOT EXISTS board_memberships (
		user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		board_id   TEXT NOT NULL REFERENCES boards (id) ON DELETE CASCADE,
		created_at {{ts}} NOT NULL,
		PRIMARY KEY (user_id, board_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_board_memberships_board ON board_memberships (board_id)`,

	`CREATE TABLE IF NOT EXISTS punches (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		board_id   TEXT NOT NULL REFERENCES boards (id) ON DELETE CASCADE,
		user_name  TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		type       TEXT NOT NULL CHECK (type IN ('in', 'out')),
		punched_at {{ts}} NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_punches_board_time ON punches (board_id, punched_at)`,
	`CREATE INDEX IF NOT EXISTS idx_punches_user_board_time ON punches (user_id, board_id, punched_at)`,
}

func (db *DB) timestampType() string {
	if db.driver == DriverPostgres {
		return "TIMESTAMPTZ"
	}
	// modernc parses DATETIME columns back into time.Time on scan.
	return "DATETIME"
}

func (db *DB) migrate() error {
	ts := db.timestampType()
	for i, stmt := range schema {
		if _, err := db.conn.Exec(strings.ReplaceAll(stmt, "{{ts}}", ts)); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
