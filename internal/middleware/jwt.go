package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/utils"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
	ContextRole      = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token with the codec and injects the token's identity claims into the
// request context.  The codec rejects refresh tokens here via the
// token_type discriminator, so a long-lived refresh token can never be
// used to call protected endpoints.
func JWTAuth(codec *utils.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := codec.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextSessionID, claims.SessionID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}
