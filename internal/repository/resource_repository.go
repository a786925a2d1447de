package repository

import (
	"context"
	"database/sql"

	"github.com/siderhub/platform/internal/model"
)

// ResourceRepo provides access to the Cybervault `resources` table.
type ResourceRepo struct{ DB *sql.DB }

func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{DB: db} }

const resourceColumns = "id, title, description, category, asset_url, is_featured, download_count, created_at, updated_at"

// List returns resources, optionally filtered by category, newest first.
func (r *ResourceRepo) List(ctx context.Context, category string, limit, offset int) ([]model.Resource, error) {
	query := "SELECT " + resourceColumns + " FROM resources"
	args := []interface{}{}
	if category != "" {
		query += " WHERE category=?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

// ListFeatured returns resources flagged as featured.
func (r *ResourceRepo) ListFeatured(ctx context.Context, limit int) ([]model.Resource, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE is_featured=1 ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

// GetByID fetches a single resource.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (model.Resource, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id=? LIMIT 1", id)
	res, err := scanResource(row)
	if err == sql.ErrNoRows {
		return model.Resource{}, ErrNotFound
	}
	return res, err
}

// IncrementDownload bumps the download counter.  ErrNotFound is returned
// when the resource does not exist.
func (r *ResourceRepo) IncrementDownload(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE resources SET download_count=download_count+1 WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func collectResources(rows *sql.Rows) ([]model.Resource, error) {
	var out []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanResource(s rowScanner) (model.Resource, error) {
	var res model.Resource
	err := s.Scan(&res.ID, &res.Title, &res.Description, &res.Category, &res.AssetURL,
		&res.IsFeatured, &res.DownloadCount, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}
