package model

import "time"

// Session models an entry in the `sessions` table.  Each session belongs
// to a user and anchors the validity of exactly one refresh token at a
// time.  The plain refresh token is never stored; only its SHA-256 hash.
// Rotating the token on every refresh means a previously issued token no
// longer matches the stored hash and can be detected as a replay.
//
// Fields:
//
//	ID               – primary key identifier (uuid).
//	UserID           – owner of the session.
//	RefreshTokenHash – SHA-256 hex digest of the current refresh token.
//	ExpiresAt        – expiration timestamp of the refresh token.
//	UserAgent        – device/browser string captured at login.
//	IP               – remote address captured at login.
//	InvalidatedAt    – when the session was invalidated (null if still active).
//	CreatedAt        – timestamp of creation.
//	LastSeenAt       – timestamp of the most recent rotation.
type Session struct {
	ID               string     // sessions.id
	UserID           string     // sessions.user_id
	RefreshTokenHash string     // sessions.refresh_token_hash
	ExpiresAt        time.Time  // sessions.expires_at
	UserAgent        string     // sessions.user_agent
	IP               string     // sessions.ip
	InvalidatedAt    *time.Time // sessions.invalidated_at (nullable)
	CreatedAt        time.Time  // sessions.created_at
	LastSeenAt       time.Time  // sessions.last_seen_at
}

// Active reports whether the session can still be used for refreshing,
// i.e. it has not been invalidated and has not expired at the given time.
func (s Session) Active(now time.Time) bool {
	return s.InvalidatedAt == nil && now.Before(s.ExpiresAt)
}
