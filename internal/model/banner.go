package model

import "time"

// Banner is an admin-managed announcement shown on the hub.  A banner is
// active when the current time falls inside [StartsAt, EndsAt) and it has
// not been disabled.
type Banner struct {
	ID        string     // banners.id
	Title     string     // banners.title
	ImageURL  string     // banners.image_url
	LinkURL   *string    // banners.link_url (nullable)
	Position  int        // banners.position
	IsActive  bool       // banners.is_active
	StartsAt  *time.Time // banners.starts_at (nullable)
	EndsAt    *time.Time // banners.ends_at (nullable)
	CreatedAt time.Time  // banners.created_at
}
