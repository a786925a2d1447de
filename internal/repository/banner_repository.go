package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/siderhub/platform/internal/model"
)

// BannerRepo provides access to the `banners` table.
type BannerRepo struct{ DB *sql.DB }

func NewBannerRepo(db *sql.DB) *BannerRepo { return &BannerRepo{DB: db} }

const bannerColumns = "id, title, image_url, link_url, position, is_active, starts_at, ends_at, created_at"

// Create inserts a banner row.
func (r *BannerRepo) Create(ctx context.Context, b model.Banner) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO banners (id, title, image_url, link_url, position, is_active, starts_at, ends_at) VALUES (?,?,?,?,?,?,?,?)",
		b.ID, b.Title, b.ImageURL, b.LinkURL, b.Position, b.IsActive, b.StartsAt, b.EndsAt)
	return err
}

// ListActive returns enabled banners whose display window contains now,
// ordered by position.
func (r *BannerRepo) ListActive(ctx context.Context, now time.Time, limit int) ([]model.Banner, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+bannerColumns+` FROM banners
         WHERE is_active=1 AND (starts_at IS NULL OR starts_at <= ?) AND (ends_at IS NULL OR ends_at > ?)
         ORDER BY position ASC LIMIT ?`, now, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBanners(rows)
}

// List returns every banner for the admin console, newest first.
func (r *BannerRepo) List(ctx context.Context) ([]model.Banner, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bannerColumns+" FROM banners ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBanners(rows)
}

func collectBanners(rows *sql.Rows) ([]model.Banner, error) {
	var out []model.Banner
	for rows.Next() {
		var (
			b        model.Banner
			linkURL  sql.NullString
			startsAt sql.NullTime
			endsAt   sql.NullTime
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &linkURL, &b.Position,
			&b.IsActive, &startsAt, &endsAt, &b.CreatedAt); err != nil {
			return nil, err
		}
		if linkURL.Valid {
			b.LinkURL = &linkURL.String
		}
		if startsAt.Valid {
			t := startsAt.Time
			b.StartsAt = &t
		}
		if endsAt.Valid {
			t := endsAt.Time
			b.EndsAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
