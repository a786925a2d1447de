package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/siderhub/platform/internal/model"
)

// SessionRepo persists one row per authenticated device in the
// `sessions` table.  Only the SHA-256 hash of the current refresh token
// is stored; rotation updates the hash and expiry in place.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = "id, user_id, refresh_token_hash, expires_at, user_agent, ip, invalidated_at, created_at, last_seen_at"

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, refresh_token_hash, expires_at, user_agent, ip) VALUES (?,?,?,?,?,?)",
		s.ID, s.UserID, s.RefreshTokenHash, s.ExpiresAt, s.UserAgent, s.IP)
	return err
}

// GetByID fetches a session by id regardless of its state; callers
// decide how to treat invalidated or expired rows.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (model.Session, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id=? LIMIT 1", id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return model.Session{}, ErrNotFound
	}
	return s, err
}

// ListActiveByUser returns all non-invalidated, non-expired sessions for
// a user, most recently seen first.
func (r *SessionRepo) ListActiveByUser(ctx context.Context, userID string) ([]model.Session, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id=? AND invalidated_at IS NULL AND expires_at > UTC_TIMESTAMP() ORDER BY last_seen_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Rotate replaces the stored refresh-token hash and expiry for a
// session and bumps last_seen_at.  After rotation the previous token no
// longer matches and is unusable.
func (r *SessionRepo) Rotate(ctx context.Context, id, newHash string, newExpiry time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET refresh_token_hash=?, expires_at=?, last_seen_at=UTC_TIMESTAMP() WHERE id=? AND invalidated_at IS NULL",
		newHash, newExpiry, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Invalidate marks a single session as terminated.
func (r *SessionRepo) Invalidate(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET invalidated_at=UTC_TIMESTAMP() WHERE id=? AND invalidated_at IS NULL", id)
	return err
}

// InvalidateAllForUser terminates every active session of a user.
func (r *SessionRepo) InvalidateAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET invalidated_at=UTC_TIMESTAMP() WHERE user_id=? AND invalidated_at IS NULL", userID)
	return err
}

func scanSession(s rowScanner) (model.Session, error) {
	var (
		sess        model.Session
		invalidated sql.NullTime
	)
	err := s.Scan(&sess.ID, &sess.UserID, &sess.RefreshTokenHash, &sess.ExpiresAt,
		&sess.UserAgent, &sess.IP, &invalidated, &sess.CreatedAt, &sess.LastSeenAt)
	if err != nil {
		return model.Session{}, err
	}
	if invalidated.Valid {
		t := invalidated.Time
		sess.InvalidatedAt = &t
	}
	return sess, nil
}
