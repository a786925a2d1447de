package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/metrics"
	"github.com/siderhub/platform/internal/middleware"
	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/service"
	"github.com/siderhub/platform/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth      *service.AuthService
	Collector *metrics.Collector
}

func NewAuthHandler(auth *service.AuthService, collector *metrics.Collector) *AuthHandler {
	return &AuthHandler{Auth: auth, Collector: collector}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type logoutReq struct {
	SessionID string `json:"session_id"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	DisplayName string     `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	Timezone    string     `json:"timezone"`
	Badges      []string   `json:"badges"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
type accessPart struct {
	Feature     string   `json:"feature"`
	Enabled     bool     `json:"enabled"`
	Permissions []string `json:"permissions"`
}
type sessionPart struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"user_agent"`
	IP         string    `json:"ip"`
	IsCurrent  bool      `json:"is_current"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
type loginResp struct {
	User           userPart      `json:"user"`
	AccessToken    tokenPart     `json:"access_token"`
	RefreshToken   tokenPart     `json:"refresh_token"`
	AccessMap      []accessPart  `json:"access_map"`
	ActiveSessions []sessionPart `json:"active_sessions"`
}
type refreshResp struct {
	AccessToken  tokenPart `json:"access_token"`
	RefreshToken tokenPart `json:"refresh_token"`
}
type meResp struct {
	User           userPart      `json:"user"`
	AccessMap      []accessPart  `json:"access_map"`
	ActiveSessions []sessionPart `json:"active_sessions"`
}

func toUserPart(u model.User) userPart {
	var badges []string
	if u.Badges != "" {
		badges = strings.Split(u.Badges, ",")
	} else {
		badges = []string{}
	}
	return userPart{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
		Timezone:    u.Timezone,
		Badges:      badges,
		LastLoginAt: u.LastLoginAt,
	}
}

func toAccessParts(entries []model.AccessEntry) []accessPart {
	out := make([]accessPart, 0, len(entries))
	for _, e := range entries {
		perms := e.Permissions
		if perms == nil {
			perms = []string{}
		}
		out = append(out, accessPart{Feature: e.Feature, Enabled: e.Enabled, Permissions: perms})
	}
	return out
}

func toSessionParts(sessions []model.Session, currentID string) []sessionPart {
	out := make([]sessionPart, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionPart{
			ID:         s.ID,
			UserAgent:  s.UserAgent,
			IP:         s.IP,
			IsCurrent:  s.ID == currentID,
			CreatedAt:  s.CreatedAt,
			LastSeenAt: s.LastSeenAt,
			ExpiresAt:  s.ExpiresAt,
		})
	}
	return out
}

// Login: verify credentials, open a session and return the token pair
// together with the recomputed access map and active session list.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Collector.RecordLoginFailure()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	h.Collector.RecordLogin()

	currentID := ""
	if len(res.Sessions) > 0 {
		// The session just created carries the refresh token we return.
		currentID = claimsSessionID(res)
	}
	return c.JSON(http.StatusOK, loginResp{
		User:           toUserPart(res.User),
		AccessToken:    tokenPart{Token: res.Tokens.Access.Token, Expires: res.Tokens.Access.ExpiresAt},
		RefreshToken:   tokenPart{Token: res.Tokens.Refresh.Token, Expires: res.Tokens.Refresh.ExpiresAt},
		AccessMap:      toAccessParts(res.AccessMap),
		ActiveSessions: toSessionParts(res.Sessions, currentID),
	})
}

// claimsSessionID finds the id of the session created by this login:
// the one whose stored hash matches the returned refresh token.
func claimsSessionID(res service.LoginResult) string {
	hash := utils.HashRefreshRaw(res.Tokens.Refresh.Token)
	for _, s := range res.Sessions {
		if s.RefreshTokenHash == hash {
			return s.ID
		}
	}
	return ""
}

// Refresh: exchange a refresh token for a rotated pair.  A stale token
// invalidates the session server-side, so the 401 here can mean "log in
// again" in the strongest sense.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrTokenVerificationFailed),
			errors.Is(err, utils.ErrTokenInvalidType),
			errors.Is(err, service.ErrSessionNotFound),
			errors.Is(err, service.ErrSessionExpired),
			errors.Is(err, service.ErrRefreshTokenMismatch):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, refreshResp{
		AccessToken:  tokenPart{Token: pair.Access.Token, Expires: pair.Access.ExpiresAt},
		RefreshToken: tokenPart{Token: pair.Refresh.Token, Expires: pair.Refresh.ExpiresAt},
	})
}

// Logout: invalidate the session named in the body, or every session of
// the authenticated user when none is given.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req logoutReq
	_ = c.Bind(&req) // empty body means "log out everywhere"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, uid, strings.TrimSpace(req.SessionID)); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: return the caller's profile, access map and active sessions.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sid, _ := c.Get(middleware.ContextSessionID).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Me(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, meResp{
		User:           toUserPart(res.User),
		AccessMap:      toAccessParts(res.AccessMap),
		ActiveSessions: toSessionParts(res.Sessions, sid),
	})
}
