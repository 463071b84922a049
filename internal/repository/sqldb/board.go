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

var _ repository.BoardRepository = (*DB)(nil)

const boardColumns = `b.id, b.organization_id, b.name, b.slug, b.created_at, b.updated_at`

func (db *DB) CreateBoard(ctx context.Context, board *model.Board) error {
	if board.ID == "" {
		board.ID = xid.New().String()
	}
	board.CreatedAt = now()
	board.UpdatedAt = board.CreatedAt

	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO boards (id, organization_id, name, slug, created_at, updated_at)
		 VALUES (:id, :organization_id, :name, :slug, :created_at, :updated_at)`,
		board,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("board", fmt.Sprintf("slug %q is already taken in this organization", board.Slug))
		}
		return fmt.Errorf("sqldb: inserting board %s: %w", board.Slug, err)
	}
	return nil
}

func (db *DB) GetBoardByID(ctx context.Context, id string) (*model.Board, error) {
	var b model.Board
	err := db.conn.GetContext(ctx, &b, db.conn.Rebind(
		`SELECT `+boardColumns+` FROM boards b WHERE b.id = ?`,
	), id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("board", id)
		}
		return nil, fmt.Errorf("sqldb: getting board %s: %w", id, err)
	}
	return &b, nil
}

func (db *DB) GetBoardBySlug(ctx context.Context, orgID, slug string) (*model.Board, error) {
	var b model.Board
	err := db.conn.GetContext(ctx, &b, db.conn.Rebind(
		`SELECT `+boardColumns+` FROM boards b WHERE b.organization_id = ? AND b.slug = ?`,
	), orgID, slug)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("board", slug)
		}
		return nil, fmt.Errorf("sqldb: getting board %s/%s: %w", orgID, slug, err)
	}
	return &b, nil
}

func (db *DB) ListBoardsByOrganization(ctx context.Context, orgID string) ([]model.Board, error) {
	boards := []model.Board{}
	err := db.conn.SelectContext(ctx, &boards, db.conn.Rebind(
		`SELECT `+boardColumns+` FROM boards b WHERE b.organization_id = ? ORDER BY b.name, b.id`,
	), orgID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing boards of %s: %w", orgID, err)
	}
	return boards, nil
}

func (db *DB) ListBoardsForMember(ctx context.Context, userID, orgID string) ([]model.Board, error) {
	boards := []model.Board{}
	err := db.conn.SelectContext(ctx, &boards, db.conn.Rebind(
		`SELECT `+boardColumns+`
		 FROM boards b
		 JOIN board_memberships bm ON bm.board_id = b.id
		 WHERE bm.user_id = ? AND b.organization_id = ?
		 ORDER BY b.name, b.id`,
	), userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing boards of %s for %s: %w", orgID, userID, err)
	}
	return boards, nil
}

// UpdateBoard rewrites name and slug.
func (db *DB) UpdateBoard(ctx context.Context, board *model.Board) error {
	board.UpdatedAt = now()

	res, err := db.conn.NamedExecContext(ctx,
		`UPDATE boards SET name = :name, slug = :slug, updated_at = :updated_at WHERE id = :id`,
		board,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("board", fmt.Sprintf("slug %q is already taken in this organization", board.Slug))
		}
		return fmt.Errorf("sqldb: updating board %s: %w", board.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("board", board.ID)
	}
	return nil
}

// DeleteBoard clears dependent rows explicitly instead of relying on
// ON DELETE CASCADE, which SQLite only honours with foreign_keys enabled.
func (db *DB) DeleteBoard(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM board_memberships WHERE board_id = ?`), id); err != nil {
			return fmt.Errorf("sqldb: deleting memberships of board %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM punches WHERE board_id = ?`), id); err != nil {
			return fmt.Errorf("sqldb: deleting punches of board %s: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM boards WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("sqldb: deleting board %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperror.NotFound("board", id)
		}
		return nil
	})
}
