package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/siderhub/platform/internal/model"
)

// EvolutionRepo stores per-member Evolution gateway configuration in the
// `evolution_configs` table, one row per user.
type EvolutionRepo struct{ DB *sql.DB }

func NewEvolutionRepo(db *sql.DB) *EvolutionRepo { return &EvolutionRepo{DB: db} }

// Upsert creates or replaces a member's gateway configuration.
func (r *EvolutionRepo) Upsert(ctx context.Context, cfg model.EvolutionConfig) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO evolution_configs (user_id, base_url, api_key_encrypted, status) VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE base_url=VALUES(base_url), api_key_encrypted=VALUES(api_key_encrypted), status=VALUES(status)`,
		cfg.UserID, cfg.BaseURL, cfg.APIKeyEncrypted, cfg.Status)
	return err
}

// GetByUser fetches a member's gateway configuration.
func (r *EvolutionRepo) GetByUser(ctx context.Context, userID string) (model.EvolutionConfig, error) {
	var (
		cfg       model.EvolutionConfig
		checkedAt sql.NullTime
		lastErr   sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, base_url, api_key_encrypted, status, last_checked_at, last_error, created_at, updated_at FROM evolution_configs WHERE user_id=? LIMIT 1",
		userID).Scan(&cfg.UserID, &cfg.BaseURL, &cfg.APIKeyEncrypted, &cfg.Status,
		&checkedAt, &lastErr, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.EvolutionConfig{}, ErrNotFound
	}
	if err != nil {
		return model.EvolutionConfig{}, err
	}
	if checkedAt.Valid {
		t := checkedAt.Time
		cfg.LastCheckedAt = &t
	}
	if lastErr.Valid {
		cfg.LastError = &lastErr.String
	}
	return cfg, nil
}

// SetStatus records the outcome of a health check or a failed gateway
// call.  lastError may be empty when the connection is healthy.
func (r *EvolutionRepo) SetStatus(ctx context.Context, userID, status, lastError string, checkedAt time.Time) error {
	var errVal interface{}
	if lastError != "" {
		errVal = lastError
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE evolution_configs SET status=?, last_error=?, last_checked_at=? WHERE user_id=?",
		status, errVal, checkedAt, userID)
	return err
}
