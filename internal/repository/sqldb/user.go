package sqldb

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, external_id, email, name, global_role, created_at, updated_at`

// CreateUser inserts a new user, filling in ID, timestamps and the default
// global role. A duplicate external ID is a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if user.GlobalRole == "" {
		user.GlobalRole = model.GlobalRoleUser
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (:id, :external_id, :email, :name, :global_role, :created_at, :updated_at)`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "external id already registered")
		}
		return fmt.Errorf("sqldb: inserting user (externalID=%s): %w", user.ExternalID, err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, "id = ?", id, id)
}

func (db *DB) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return db.getUser(ctx, "external_id = ?", externalID, externalID)
}

// GetUserByEmail ignores case. Empty emails never match. When several rows
// share an address the oldest wins.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperror.NotFound("user", "<empty email>")
	}
	return db.getUser(ctx, "LOWER(email) = LOWER(?)", email, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any, label string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, db.conn.Rebind(
		`SELECT `+userColumns+` FROM users WHERE `+where+` ORDER BY created_at, id LIMIT 1`,
	), arg)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("sqldb: getting user %s: %w", label, err)
	}
	return &u, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = now()

	res, err := db.conn.NamedExecContext(ctx,
		`UPDATE users
		 SET external_id = :external_id, email = :email, name = :name,
		     global_role = :global_role, updated_at = :updated_at
		 WHERE id = :id`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "external id already registered")
		}
		return fmt.Errorf("sqldb: updating user %s: %w", user.ID, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}
