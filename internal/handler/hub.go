package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/middleware"
	"github.com/siderhub/platform/internal/service"
)

// HubHandler serves the aggregated dashboard payload.
type HubHandler struct {
	Hub *service.HubService
}

func NewHubHandler(hub *service.HubService) *HubHandler {
	return &HubHandler{Hub: hub}
}

// GetOverview fans out across the feature services and returns whatever
// sections succeed.  Only when every section failed does this answer
// 503.
func (h *HubHandler) GetOverview(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)

	limits := service.OverviewLimits{
		Banners:   queryInt(c, "banners"),
		Courses:   queryInt(c, "courses"),
		Resources: queryInt(c, "resources"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	overview, err := h.Hub.GetOverview(ctx, uid, limits)
	if err != nil {
		if errors.Is(err, service.ErrOverviewUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "overview unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load overview failed"})
	}
	return c.JSON(http.StatusOK, overview)
}

// queryInt parses an optional positive integer query parameter; zero
// means "use the default".
func queryInt(c echo.Context, name string) int {
	v := c.QueryParam(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
