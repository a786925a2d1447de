package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/utils"
)

// UserRepo provides access to the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, password_hash, role, display_name, avatar_url, bio, timezone, badges, social_links, is_active, last_login_at, created_at, updated_at"

// Create inserts a user and returns its generated id.  The password is
// hashed here so plain text never crosses the repository boundary.
func (r *UserRepo) Create(ctx context.Context, email, password, role, displayName string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, role, display_name, timezone) VALUES (?,?,?,?,?,?)",
		id, email, hash, role, displayName, "UTC")
	if err != nil {
		// MySQL duplicate-key error code
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.  ErrNotFound is
// returned for unknown addresses so callers can map it to a generic
// invalid-credentials response.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateLastLogin stamps users.last_login_at after a successful login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET last_login_at=? WHERE id=?", at, id)
	return err
}

// List returns users ordered by creation time, newest first.  Used by
// the admin console member listing.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u         model.User
		avatar    sql.NullString
		bio       sql.NullString
		lastLogin sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.DisplayName,
		&avatar, &bio, &u.Timezone, &u.Badges, &u.SocialLinks,
		&u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	if bio.Valid {
		u.Bio = &bio.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}
