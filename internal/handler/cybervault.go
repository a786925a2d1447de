package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/repository"
)

// CybervaultHandler serves the resource library.
type CybervaultHandler struct {
	Resources *repository.ResourceRepo
}

func NewCybervaultHandler(resources *repository.ResourceRepo) *CybervaultHandler {
	return &CybervaultHandler{Resources: resources}
}

// ListResources returns resources, optionally filtered by category.
func (h *CybervaultHandler) ListResources(c echo.Context) error {
	limit := queryInt(c, "limit")
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resources, err := h.Resources.List(ctx, c.QueryParam("category"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list resources failed"})
	}
	if resources == nil {
		resources = []model.Resource{}
	}
	return c.JSON(http.StatusOK, echo.Map{"resources": resources})
}

// DownloadResource bumps the download counter and hands back the asset
// URL.  Unknown ids answer 404.
func (h *CybervaultHandler) DownloadResource(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load resource failed"})
	}
	if err := h.Resources.IncrementDownload(ctx, res.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record download failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": res.AssetURL})
}
