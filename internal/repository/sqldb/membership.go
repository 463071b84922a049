package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

var _ repository.MembershipRepository = (*DB)(nil)

// =========================================================================
// ORGANIZATION MEMBERSHIPS
// =========================================================================

func (db *DB) GetOrganizationMembership(ctx context.Context, userID, orgID string) (*model.OrganizationMembership, error) {
	var m model.OrganizationMembership
	err := db.conn.GetContext(ctx, &m, db.conn.Rebind(
		`SELECT user_id, organization_id, role, created_at
		 FROM organization_memberships WHERE user_id = ? AND organization_id = ?`,
	), userID, orgID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("organization membership", userID+"@"+orgID)
		}
		return nil, fmt.Errorf("sqldb: getting membership %s@%s: %w", userID, orgID, err)
	}
	return &m, nil
}

// UpsertOrganizationMembership uses ON CONFLICT ... DO UPDATE, which both
// SQLite (3.24+) and PostgreSQL understand. The original created_at is kept.
func (db *DB) UpsertOrganizationMembership(ctx context.Context, m *model.OrganizationMembership) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO organization_memberships (user_id, organization_id, role, created_at)
		 VALUES (:user_id, :organization_id, :role, :created_at)
		 ON CONFLICT (user_id, organization_id) DO UPDATE SET role = excluded.role`,
		m,
	)
	if err != nil {
		return fmt.Errorf("sqldb: upserting membership %s@%s: %w", m.UserID, m.OrganizationID, err)
	}
	return nil
}

func (db *DB) ListUserOrganizations(ctx context.Context, userID string) ([]model.UserOrganization, error) {
	orgs := []model.UserOrganization{}
	err := db.conn.SelectContext(ctx, &orgs, db.conn.Rebind(
		`SELECT o.id, o.name, o.slug, o.created_at, m.role
		 FROM organizations o
		 JOIN organization_memberships m ON m.organization_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.name, o.id`,
	), userID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing organizations of %s: %w", userID, err)
	}
	return orgs, nil
}

func (db *DB) ListOrganizationMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error) {
	members := []model.OrganizationMember{}
	err := db.conn.SelectContext(ctx, &members, db.conn.Rebind(
		`SELECT u.id AS user_id, u.email, u.name, m.role
		 FROM organization_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.organization_id = ?
		 ORDER BY u.name, u.email, u.id`,
	), orgID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing members of %s: %w", orgID, err)
	}
	return members, nil
}

// =========================================================================
// BOARD MEMBERSHIPS
// =========================================================================

func (db *DB) HasBoardMembership(ctx context.Context, userID, boardID string) (bool, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, db.conn.Rebind(
		`SELECT COUNT(*) FROM board_memberships WHERE user_id = ? AND board_id = ?`,
	), userID, boardID)
	if err != nil {
		return false, fmt.Errorf("sqldb: checking board membership %s@%s: %w", userID, boardID, err)
	}
	return n > 0, nil
}

func (db *DB) GrantBoardAccess(ctx context.Context, userID, boardID, orgID string) (*model.BoardMembership, error) {
	m := &model.BoardMembership{UserID: userID, BoardID: boardID}

	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		ts := now()

		// An existing role (admin or member) is left untouched.
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO organization_memberships (user_id, organization_id, role, created_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (user_id, organization_id) DO NOTHING`,
		), userID, orgID, model.OrgRoleMember, ts)
		if err != nil {
			return fmt.Errorf("sqldb: ensuring membership %s@%s: %w", userID, orgID, err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO board_memberships (user_id, board_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (user_id, board_id) DO NOTHING`,
		), userID, boardID, ts)
		if err != nil {
			return fmt.Errorf("sqldb: granting board %s to %s: %w", boardID, userID, err)
		}

		return tx.GetContext(ctx, &m.CreatedAt, tx.Rebind(
			`SELECT created_at FROM board_memberships WHERE user_id = ? AND board_id = ?`,
		), userID, boardID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (db *DB) RemoveBoardMembership(ctx context.Context, userID, boardID string) error {
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(
		`DELETE FROM board_memberships WHERE user_id = ? AND board_id = ?`,
	), userID, boardID)
	if err != nil {
		return fmt.Errorf("sqldb: removing %s from board %s: %w", userID, boardID, err)
	}
	return nil
}

func (db *DB) ListBoardMemberIDs(ctx context.Context, boardID string) ([]string, error) {
	ids := []string{}
	err := db.conn.SelectContext(ctx, &ids, db.conn.Rebind(
		`SELECT user_id FROM board_memberships WHERE board_id = ? ORDER BY user_id`,
	), boardID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing members of board %s: %w", boardID, err)
	}
	return ids, nil
}
