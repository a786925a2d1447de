package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/handler"
	"github.com/siderhub/platform/internal/middleware"
	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/utils"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth       *handler.AuthHandler
	Hub        *handler.HubHandler
	Hidra      *handler.HidraHandler
	Academy    *handler.AcademyHandler
	Cybervault *handler.CybervaultHandler
	Admin      *handler.AdminHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check; /metrics is mounted in main
// because it is a plain http.Handler.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the full v1 surface.  Login and refresh live
// outside the protected group; everything else requires a valid access
// token.  Hidra is additionally gated on the member-access map, and the
// admin console on the ADMIN/SUPER_ADMIN roles.
//
// The rate limiter and response cache run after JWTAuth so their keys
// see the authenticated member; the limiter also covers the public auth
// endpoints, where it buckets by IP.
func RegisterAPI(e *echo.Echo, h Handlers, codec *utils.TokenCodec, access middleware.AccessReader, limiter, cache echo.MiddlewareFunc) {
	public := e.Group("/v1/auth", limiter)
	public.POST("/login", h.Auth.Login)
	public.POST("/refresh", h.Auth.Refresh)

	authed := e.Group("/v1")
	authed.Use(middleware.JWTAuth(codec), limiter)

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)

	authed.GET("/hub/overview", h.Hub.GetOverview, cache)

	hidra := authed.Group("/hidra")
	hidra.Use(middleware.RequireFeature(access, model.FeatureHidra))
	hidra.GET("/dashboard", h.Hidra.GetDashboard)
	hidra.PUT("/config", h.Hidra.UpdateConfig)
	hidra.POST("/campaigns", h.Hidra.CreateCampaign)
	hidra.POST("/campaigns/:id/schedule", h.Hidra.ScheduleCampaign)
	hidra.GET("/campaigns/:id/metrics", h.Hidra.GetCampaignMetrics)

	academy := authed.Group("/academy")
	academy.Use(middleware.RequireFeature(access, model.FeatureAcademy))
	academy.GET("/courses", h.Academy.ListCourses, cache)
	academy.GET("/courses/:id", h.Academy.GetCourse, cache)
	academy.PUT("/lessons/:id/progress", h.Academy.UpdateProgress)
	academy.GET("/lessons/:id/comments", h.Academy.ListComments)
	academy.POST("/lessons/:id/comments", h.Academy.CreateComment)

	vault := authed.Group("/cybervault")
	vault.Use(middleware.RequireFeature(access, model.FeatureCybervault))
	vault.GET("/resources", h.Cybervault.ListResources, cache)
	vault.POST("/resources/:id/download", h.Cybervault.DownloadResource)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin))
	admin.GET("/banners", h.Admin.ListBanners)
	admin.POST("/banners", h.Admin.CreateBanner)
	admin.GET("/members", h.Admin.ListMembers)
	admin.POST("/members", h.Admin.CreateMember)
	admin.POST("/comments/:id/hide", h.Admin.HideComment)
}
