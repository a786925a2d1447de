package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/repository"
	"github.com/siderhub/platform/internal/utils"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionStore persists one record per logged-in device.
type SessionStore interface {
	Create(ctx context.Context, s model.Session) error
	GetByID(ctx context.Context, id string) (model.Session, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.Session, error)
	Rotate(ctx context.Context, id, newHash string, newExpiry time.Time) error
	Invalidate(ctx context.Context, id string) error
	InvalidateAllForUser(ctx context.Context, userID string) error
}

// AccessStore persists the per-user member-access map.
type AccessStore interface {
	ReplaceForUser(ctx context.Context, userID string, entries []model.AccessEntry) error
	ListByUser(ctx context.Context, userID string) ([]model.AccessEntry, error)
}

// TokenPair holds a freshly issued access/refresh pair.
type TokenPair struct {
	Access  utils.IssuedToken
	Refresh utils.IssuedToken
}

// LoginResult is everything the login endpoint returns: the user, the
// token pair, the recomputed access map and the active session list
// (including the session just created).
type LoginResult struct {
	User      model.User
	Tokens    TokenPair
	AccessMap []model.AccessEntry
	Sessions  []model.Session
}

// MeResult is the read-only "who am I" payload.
type MeResult struct {
	User      model.User
	AccessMap []model.AccessEntry
	Sessions  []model.Session
}

// AuthService coordinates login, refresh rotation, logout and identity
// lookups across the token codec, password hashing and the session
// store.  Each session moves through absent -> active -> (rotated)* ->
// invalidated; rotation-on-use makes every refresh token single-use.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	access   AccessStore
	codec    *utils.TokenCodec
}

// NewAuthService wires the auth orchestrator.
func NewAuthService(users UserStore, sessions SessionStore, access AccessStore, codec *utils.TokenCodec) *AuthService {
	return &AuthService{users: users, sessions: sessions, access: access, codec: codec}
}

// Login validates credentials and opens a new session for the device.
// Unknown email and wrong password both yield ErrInvalidCredentials.  On
// success the session row stores only the SHA-256 hash of the refresh
// token, the user's last-login timestamp is updated and the member
// access map is recomputed from the role and replaced wholesale.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	access, err := s.codec.IssueAccess(u.ID, sessionID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.codec.IssueRefresh(u.ID, sessionID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.sessions.Create(ctx, model.Session{
		ID:               sessionID,
		UserID:           u.ID,
		RefreshTokenHash: utils.HashRefreshRaw(refresh.Token),
		ExpiresAt:        refresh.ExpiresAt,
		UserAgent:        userAgent,
		IP:               ip,
	}); err != nil {
		return LoginResult{}, err
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return LoginResult{}, err
	}
	accessMap := model.AccessMapForRole(u.ID, u.Role)
	if err := s.access.ReplaceForUser(ctx, u.ID, accessMap); err != nil {
		return LoginResult{}, err
	}
	active, err := s.sessions.ListActiveByUser(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	u.LastLoginAt = &now

	return LoginResult{
		User:      u,
		Tokens:    TokenPair{Access: access, Refresh: refresh},
		AccessMap: accessMap,
		Sessions:  active,
	}, nil
}

// Refresh exchanges a refresh token for a new pair and rotates the
// session's stored hash so the presented token cannot be used again.  A
// verified token whose hash no longer matches the session is treated as
// replayed or stolen: the session is invalidated before the error is
// returned, forcing that device to log in again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrSessionNotFound
		}
		return TokenPair{}, err
	}
	if sess.InvalidatedAt != nil {
		return TokenPair{}, ErrSessionNotFound
	}
	now := time.Now().UTC()
	if !now.Before(sess.ExpiresAt) {
		return TokenPair{}, ErrSessionExpired
	}
	if utils.HashRefreshRaw(refreshToken) != sess.RefreshTokenHash {
		// Detect and kill: the token verified but the stored hash has
		// moved on, so the presented token was already rotated away.
		_ = s.sessions.Invalidate(ctx, sess.ID)
		return TokenPair{}, ErrRefreshTokenMismatch
	}

	access, err := s.codec.IssueAccess(claims.UserID, sess.ID, claims.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefresh(claims.UserID, sess.ID, claims.Role)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Rotate(ctx, sess.ID, utils.HashRefreshRaw(refresh.Token), refresh.ExpiresAt); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout invalidates one session when sessionID is given, otherwise all
// of the user's sessions.  This is a terminal transition for the
// affected sessions; no tokens are returned.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" {
		return s.sessions.InvalidateAllForUser(ctx, userID)
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if sess.UserID != userID {
		return ErrSessionNotFound
	}
	return s.sessions.Invalidate(ctx, sessionID)
}

// Me returns the user's profile, current access map and active session
// list.  Read-only; no state transition.
func (s *AuthService) Me(ctx context.Context, userID string) (MeResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return MeResult{}, err
	}
	u.PasswordHash = "" // never leaves the service layer
	accessMap, err := s.access.ListByUser(ctx, userID)
	if err != nil {
		return MeResult{}, err
	}
	active, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return MeResult{}, err
	}
	return MeResult{User: u, AccessMap: accessMap, Sessions: active}, nil
}
