package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/siderhub/platform/internal/model"
)

// AccessRepo stores the member-access map in the `member_access` table,
// one row per user/feature pair.  The whole set for a user is replaced
// wholesale on login; reads happen on every authorization check.
type AccessRepo struct{ DB *sql.DB }

func NewAccessRepo(db *sql.DB) *AccessRepo { return &AccessRepo{DB: db} }

// ReplaceForUser deletes the user's current entries and inserts the
// recomputed set in a single transaction.
func (r *AccessRepo) ReplaceForUser(ctx context.Context, userID string, entries []model.AccessEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_access WHERE user_id=?", userID); err != nil {
		return err
	}
	if len(entries) > 0 {
		query := "INSERT INTO member_access (user_id, feature, enabled, permissions) VALUES "
		args := make([]interface{}, 0, len(entries)*4)
		for i, e := range entries {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?)"
			args = append(args, userID, e.Feature, e.Enabled, strings.Join(e.Permissions, ","))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByUser returns the member's access map ordered by feature name.
func (r *AccessRepo) ListByUser(ctx context.Context, userID string) ([]model.AccessEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id, feature, enabled, permissions FROM member_access WHERE user_id=? ORDER BY feature", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AccessEntry
	for rows.Next() {
		var (
			e     model.AccessEntry
			perms string
		)
		if err := rows.Scan(&e.UserID, &e.Feature, &e.Enabled, &perms); err != nil {
			return nil, err
		}
		if perms != "" {
			e.Permissions = strings.Split(perms, ",")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
