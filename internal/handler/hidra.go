package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/middleware"
	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/service"
)

// HidraHandler exposes the campaign automation endpoints.
type HidraHandler struct {
	Campaigns *service.CampaignService
}

func NewHidraHandler(campaigns *service.CampaignService) *HidraHandler {
	return &HidraHandler{Campaigns: campaigns}
}

// ----- DTOs -----

type updateConfigReq struct {
	BaseURL          string `json:"base_url"`
	APIKey           string `json:"api_key"`
	VerifyConnection bool   `json:"verify_connection"`
}
type configResp struct {
	BaseURL       string     `json:"base_url"`
	Status        string     `json:"status"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastError     *string    `json:"last_error,omitempty"`
}

type createCampaignReq struct {
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	SegmentID            string     `json:"segment_id"`
	TemplateID           string     `json:"template_id"`
	MaxMessagesPerMinute int        `json:"max_messages_per_minute"`
	ScheduledAt          *time.Time `json:"scheduled_at"`
	ExternalID           string     `json:"external_id"`
}
type scheduleCampaignReq struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type campaignPart struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Description          *string    `json:"description,omitempty"`
	Channel              string     `json:"channel"`
	Status               string     `json:"status"`
	SegmentID            string     `json:"segment_id"`
	TemplateID           string     `json:"template_id"`
	ExternalID           *string    `json:"external_id,omitempty"`
	MaxMessagesPerMinute int        `json:"max_messages_per_minute"`
	ScheduledAt          *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
type runPart struct {
	ID           string     `json:"id"`
	StartedByID  string     `json:"started_by_id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Status       string     `json:"status"`
	Summary      string     `json:"summary"`
}
type metricsPart struct {
	Total             int       `json:"total"`
	Delivered         int       `json:"delivered"`
	Failed            int       `json:"failed"`
	Pending           int       `json:"pending"`
	AverageDeliveryMs int       `json:"average_delivery_ms"`
	LastUpdatedAt     time.Time `json:"last_updated_at"`
}
type campaignDetailResp struct {
	Campaign campaignPart                  `json:"campaign"`
	Runs     []runPart                     `json:"runs"`
	Metrics  metricsPart                   `json:"metrics"`
	Timeline []model.CampaignTimelinePoint `json:"timeline"`
}

func toCampaignPart(c model.Campaign) campaignPart {
	return campaignPart{
		ID:                   c.ID,
		Name:                 c.Name,
		Description:          c.Description,
		Channel:              c.Channel,
		Status:               c.Status,
		SegmentID:            c.SegmentID,
		TemplateID:           c.TemplateID,
		ExternalID:           c.ExternalID,
		MaxMessagesPerMinute: c.MaxMessagesPerMinute,
		ScheduledAt:          c.ScheduledAt,
		CreatedAt:            c.CreatedAt,
	}
}

func toMetricsPart(m model.CampaignMetrics) metricsPart {
	return metricsPart{
		Total:             m.Total,
		Delivered:         m.Delivered,
		Failed:            m.Failed,
		Pending:           m.Pending,
		AverageDeliveryMs: m.AverageDeliveryMs,
		LastUpdatedAt:     m.LastUpdatedAt,
	}
}

func toDetailResp(d service.CampaignDetail) campaignDetailResp {
	runs := make([]runPart, 0, len(d.Runs))
	for _, r := range d.Runs {
		runs = append(runs, runPart{
			ID:           r.ID,
			StartedByID:  r.StartedByID,
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
			ScheduledFor: r.ScheduledFor,
			Status:       r.Status,
			Summary:      r.Summary,
		})
	}
	return campaignDetailResp{
		Campaign: toCampaignPart(d.Campaign),
		Runs:     runs,
		Metrics:  toMetricsPart(d.Metrics),
		Timeline: d.Timeline,
	}
}

// GetDashboard: campaign summary, per-campaign metrics and the merged
// delivery timeline for the authenticated member.
func (h *HidraHandler) GetDashboard(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	dash, err := h.Campaigns.GetDashboard(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dashboard failed"})
	}

	campaigns := make([]echo.Map, 0, len(dash.Campaigns))
	for _, o := range dash.Campaigns {
		campaigns = append(campaigns, echo.Map{
			"campaign": toCampaignPart(o.Campaign),
			"metrics":  toMetricsPart(o.Metrics),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"summary": echo.Map{
			"total_campaigns":   dash.Summary.TotalCampaigns,
			"active_campaigns":  dash.Summary.ActiveCampaigns,
			"total_delivered":   dash.Summary.TotalDelivered,
			"total_failed":      dash.Summary.TotalFailed,
			"total_pending":     dash.Summary.TotalPending,
			"connection_status": dash.Summary.ConnectionStatus,
			"timeline":          dash.Summary.Timeline,
		},
		"campaigns": campaigns,
	})
}

// UpdateConfig: store the member's gateway base URL and API key,
// optionally probing the connection right away.
func (h *HidraHandler) UpdateConfig(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	var req updateConfigReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.BaseURL = strings.TrimSpace(req.BaseURL)
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.BaseURL == "" || req.APIKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_url/api_key required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cfg, err := h.Campaigns.UpdateConfig(ctx, uid, req.BaseURL, req.APIKey, req.VerifyConnection)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save config failed"})
	}
	return c.JSON(http.StatusOK, configResp{
		BaseURL:       cfg.BaseURL,
		Status:        cfg.Status,
		LastCheckedAt: cfg.LastCheckedAt,
		LastError:     cfg.LastError,
	})
}

// CreateCampaign: create a campaign on the gateway and mirror it
// locally.  Supplying an external id already known locally returns the
// existing campaign unchanged.
func (h *HidraHandler) CreateCampaign(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	var req createCampaignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.SegmentID == "" || req.TemplateID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/segment_id/template_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Campaigns.CreateCampaign(ctx, service.CreateCampaignInput{
		OwnerID:              uid,
		Name:                 req.Name,
		Description:          req.Description,
		SegmentID:            req.SegmentID,
		TemplateID:           req.TemplateID,
		MaxMessagesPerMinute: req.MaxMessagesPerMinute,
		ScheduledAt:          req.ScheduledAt,
		ExternalID:           strings.TrimSpace(req.ExternalID),
	})
	if err != nil {
		if errors.Is(err, service.ErrGatewayNotConfigured) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "evolution gateway not configured"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "create campaign failed"})
	}
	return c.JSON(http.StatusCreated, toDetailResp(detail))
}

// ScheduleCampaign: dispatch a schedule request to the gateway and
// record the run.
func (h *HidraHandler) ScheduleCampaign(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	var req scheduleCampaignReq
	if err := c.Bind(&req); err != nil || req.ScheduledAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Campaigns.ScheduleCampaign(ctx, service.ScheduleCampaignInput{
		CampaignID:  c.Param("id"),
		ScheduledAt: req.ScheduledAt,
		InitiatedBy: uid,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "campaign not found"})
		case errors.Is(err, service.ErrGatewayNotConfigured):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "evolution gateway not configured"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "schedule campaign failed"})
	}
	return c.JSON(http.StatusOK, toDetailResp(detail))
}

// GetCampaignMetrics: sync the latest counters from the gateway and
// return the refreshed snapshot.
func (h *HidraHandler) GetCampaignMetrics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m, err := h.Campaigns.SyncMetrics(ctx, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "campaign not found"})
		case errors.Is(err, service.ErrGatewayNotConfigured):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "evolution gateway not configured"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sync metrics failed"})
	}
	return c.JSON(http.StatusOK, toMetricsPart(m))
}
