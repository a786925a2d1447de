package model

import "time"

// Resource is a downloadable item in the Cybervault library.  Downloads
// increment DownloadCount; the asset itself lives behind AssetURL.
type Resource struct {
	ID            string    // resources.id
	Title         string    // resources.title
	Description   string    // resources.description
	Category      string    // resources.category
	AssetURL      string    // resources.asset_url
	IsFeatured    bool      // resources.is_featured
	DownloadCount int       // resources.download_count
	CreatedAt     time.Time // resources.created_at
	UpdatedAt     time.Time // resources.updated_at
}
