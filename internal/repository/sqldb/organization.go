package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

var _ repository.OrganizationRepository = (*DB)(nil)

func (db *DB) CreateOrganizationWithAdmin(ctx context.Context, org *model.Organization, adminUserID string) error {
	if org.ID == "" {
		org.ID = xid.New().String()
	}
	org.CreatedAt = now()

	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO organizations (id, name, slug, created_at)
			 VALUES (:id, :name, :slug, :created_at)`,
			org,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("organization", fmt.Sprintf("slug %q is already taken", org.Slug))
			}
			return fmt.Errorf("sqldb: inserting organization %s: %w", org.Slug, err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO organization_memberships (user_id, organization_id, role, created_at)
			 VALUES (?, ?, ?, ?)`,
		), adminUserID, org.ID, model.OrgRoleAdmin, org.CreatedAt)
		if err != nil {
			return fmt.Errorf("sqldb: adding creator %s to organization %s: %w", adminUserID, org.ID, err)
		}
		return nil
	})
}

func (db *DB) GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error) {
	return db.getOrganization(ctx, "id", id)
}

func (db *DB) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	return db.getOrganization(ctx, "slug", slug)
}

func (db *DB) getOrganization(ctx context.Context, column, value string) (*model.Organization, error) {
	var org model.Organization
	err := db.conn.GetContext(ctx, &org, db.conn.Rebind(
		`SELECT id, name, slug, created_at FROM organizations WHERE `+column+` = ?`,
	), value)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("organization", value)
		}
		return nil, fmt.Errorf("sqldb: getting organization %s: %w", value, err)
	}
	return &org, nil
}
