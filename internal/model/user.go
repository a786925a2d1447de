package model

import "time"

// Role names stored in users.role.  The role decides which platform
// features are enabled for the member (see AccessEntry).
const (
	RoleMember     = "MEMBER"
	RoleMentor     = "MENTOR"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user (uuid).
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – name of the role (MEMBER, MENTOR, ADMIN, SUPER_ADMIN).
//	DisplayName  – public name shown across the platform.
//	AvatarURL    – optional avatar image URL.
//	Bio          – optional free-text biography.
//	Timezone     – IANA timezone name chosen by the member.
//	Badges       – comma-separated badge slugs awarded to the member.
//	SocialLinks  – JSON-encoded map of social network -> URL.
//	IsActive     – whether the account is active.
//	LastLoginAt  – timestamp of the most recent successful login (nullable).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Role         string     // users.role
	DisplayName  string     // users.display_name
	AvatarURL    *string    // users.avatar_url (nullable)
	Bio          *string    // users.bio (nullable)
	Timezone     string     // users.timezone
	Badges       string     // users.badges
	SocialLinks  string     // users.social_links
	IsActive     bool       // users.is_active
	LastLoginAt  *time.Time // users.last_login_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
