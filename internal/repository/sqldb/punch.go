package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

var _ repository.PunchRepository = (*DB)(nil)

const punchColumns = `id, user_id, board_id, user_name, user_email, type, punched_at, note, created_at`

func (db *DB) CreatePunch(ctx context.Context, punch *model.Punch) error {
	if punch.ID == "" {
		punch.ID = xid.New().String()
	}
	punch.Timestamp = punch.Timestamp.UTC()
	punch.CreatedAt = now()

	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO punches (`+punchColumns+`)
		 VALUES (:id, :user_id, :board_id, :user_name, :user_email, :type, :punched_at, :note, :created_at)`,
		punch,
	)
	if err != nil {
		return fmt.Errorf("sqldb: inserting punch for %s on %s: %w", punch.UserID, punch.BoardID, err)
	}
	return nil
}

func (db *DB) GetPunchByID(ctx context.Context, id string) (*model.Punch, error) {
	var p model.Punch
	err := db.conn.GetContext(ctx, &p, db.conn.Rebind(
		`SELECT `+punchColumns+` FROM punches WHERE id = ?`,
	), id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("punch", id)
		}
		return nil, fmt.Errorf("sqldb: getting punch %s: %w", id, err)
	}
	return &p, nil
}

// ListPunchesByIDs returns the punches that exist among ids, oldest first.
// Unknown ids are skipped.
func (db *DB) ListPunchesByIDs(ctx context.Context, ids []string) ([]model.Punch, error) {
	punches := []model.Punch{}
	if len(ids) == 0 {
		return punches, nil
	}

	query, args, err := sqlx.In(`SELECT `+punchColumns+` FROM punches WHERE id IN (?) ORDER BY punched_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("sqldb: building punch id query: %w", err)
	}
	if err := db.conn.SelectContext(ctx, &punches, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqldb: listing punches by id: %w", err)
	}
	return punches, nil
}

func (db *DB) UpdatePunch(ctx context.Context, punch *model.Punch) error {
	punch.Timestamp = punch.Timestamp.UTC()

	res, err := db.conn.NamedExecContext(ctx,
		`UPDATE punches SET type = :type, punched_at = :punched_at, note = :note WHERE id = :id`,
		punch,
	)
	if err != nil {
		return fmt.Errorf("sqldb: updating punch %s: %w", punch.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("punch", punch.ID)
	}
	return nil
}

func (db *DB) DeletePunch(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM punches WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqldb: deleting punch %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("punch", id)
	}
	return nil
}

func (db *DB) DeletePunches(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(`DELETE FROM punches WHERE id IN (?)`, ids)
		if err != nil {
			return fmt.Errorf("sqldb: building punch delete: %w", err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("sqldb: deleting %d punches: %w", len(ids), err)
		}

		// Rolling back on a short count keeps the delete all-or-nothing.
		if n, _ := res.RowsAffected(); n != int64(len(ids)) {
			return apperror.NotFound("punch", strings.Join(ids, ","))
		}
		return nil
	})
}

func (db *DB) ListPunches(ctx context.Context, f repository.PunchFilter) ([]model.Punch, error) {
	var (
		where []string
		args  []any
	)
	if f.BoardID != "" {
		where = append(where, "board_id = ?")
		args = append(args, f.BoardID)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		where = append(where, "punched_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "punched_at < ?")
		args = append(args, f.To.UTC())
	}

	query := `SELECT ` + punchColumns + ` FROM punches`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Order == repository.Descending {
		query += ` ORDER BY punched_at DESC, created_at DESC, id DESC`
	} else {
		query += ` ORDER BY punched_at, created_at, id`
	}

	punches := []model.Punch{}
	if err := db.conn.SelectContext(ctx, &punches, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqldb: listing punches: %w", err)
	}
	return punches, nil
}

func (db *DB) LatestPunch(ctx context.Context, userID, boardID string) (*model.Punch, error) {
	var p model.Punch
	err := db.conn.GetContext(ctx, &p, db.conn.Rebind(
		`SELECT `+punchColumns+` FROM punches
		 WHERE user_id = ? AND board_id = ?
		 ORDER BY punched_at DESC, created_at DESC, id DESC
		 LIMIT 1`,
	), userID, boardID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("punch", "latest for "+userID)
		}
		return nil, fmt.Errorf("sqldb: getting latest punch of %s on %s: %w", userID, boardID, err)
	}
	return &p, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
