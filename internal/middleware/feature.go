package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/model"
)

// AccessReader is the slice of the access repository this middleware
// needs.
type AccessReader interface {
	ListByUser(ctx context.Context, userID string) ([]model.AccessEntry, error)
}

// RequireFeature returns a middleware that checks the authenticated
// member's access map for the given feature.  The map is read on every
// request so a revoked feature takes effect immediately, not at the
// next login.  Requests without an enabled entry are rejected with 403.
func RequireFeature(access AccessReader, feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get(ContextUserID).(string)
			if !ok || uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			entries, err := access.ListByUser(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "access check failed"})
			}
			for _, e := range entries {
				if e.Feature == feature && e.Enabled {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "feature not enabled"})
		}
	}
}
