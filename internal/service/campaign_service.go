package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siderhub/platform/internal/evolution"
	"github.com/siderhub/platform/internal/metrics"
	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/queue"
	"github.com/siderhub/platform/internal/repository"
	"github.com/siderhub/platform/internal/utils"
)

// CampaignStore is the slice of the campaign repository the service
// needs.
type CampaignStore interface {
	Create(ctx context.Context, c model.Campaign) error
	GetByID(ctx context.Context, id string) (model.Campaign, error)
	GetByExternalID(ctx context.Context, externalID string) (model.Campaign, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Campaign, error)
	UpdateSchedule(ctx context.Context, id, status string, scheduledAt time.Time) error
	UpdateStatus(ctx context.Context, id, status string) error
	CreateRun(ctx context.Context, run model.CampaignRun) error
	ListRuns(ctx context.Context, campaignID string) ([]model.CampaignRun, error)
	ReplaceMetrics(ctx context.Context, m model.CampaignMetrics) error
	GetMetrics(ctx context.Context, campaignID string) (model.CampaignMetrics, error)
	UpsertTimelinePoint(ctx context.Context, campaignID string, p model.CampaignTimelinePoint) error
	ListTimelineByCampaign(ctx context.Context, campaignID string) ([]model.CampaignTimelinePoint, error)
	ListTimelineByOwner(ctx context.Context, ownerID string) ([]model.CampaignTimelinePoint, error)
}

// ConfigStore persists per-member Evolution gateway configuration.
type ConfigStore interface {
	Upsert(ctx context.Context, cfg model.EvolutionConfig) error
	GetByUser(ctx context.Context, userID string) (model.EvolutionConfig, error)
	SetStatus(ctx context.Context, userID, status, lastError string, checkedAt time.Time) error
}

// Gateway is the Evolution API surface the service depends on.
type Gateway interface {
	CreateCampaign(ctx context.Context, creds evolution.Credentials, spec evolution.CampaignSpec) (evolution.CampaignState, error)
	ScheduleCampaign(ctx context.Context, creds evolution.Credentials, externalID string, scheduledAt time.Time) (evolution.CampaignState, error)
	GetCampaignMetrics(ctx context.Context, creds evolution.Credentials, externalID string) (evolution.MetricsSnapshot, error)
	TestConnection(ctx context.Context, creds evolution.Credentials) error
}

// EventPublisher emits audit events after successful dispatches.
type EventPublisher interface {
	PublishCampaignScheduled(ctx context.Context, event queue.CampaignScheduledEvent) error
}

// CampaignDetail is the full local view of a campaign: the row itself,
// its run history, the latest metrics snapshot and its timeline.
type CampaignDetail struct {
	Campaign model.Campaign
	Runs     []model.CampaignRun
	Metrics  model.CampaignMetrics
	Timeline []model.CampaignTimelinePoint
}

// CampaignOverview pairs a campaign with its latest metrics for listing.
type CampaignOverview struct {
	Campaign model.Campaign
	Metrics  model.CampaignMetrics
}

// DashboardSummary aggregates a member's campaigns for the Hidra
// dashboard and the hub overview.
type DashboardSummary struct {
	TotalCampaigns   int
	ActiveCampaigns  int
	TotalDelivered   int
	TotalFailed      int
	TotalPending     int
	ConnectionStatus string
	Timeline         []model.CampaignTimelinePoint
}

// Dashboard is the payload behind GET /hidra/dashboard.
type Dashboard struct {
	Summary   DashboardSummary
	Campaigns []CampaignOverview
}

// CreateCampaignInput carries everything needed to create a campaign.
type CreateCampaignInput struct {
	OwnerID              string
	Name                 string
	Description          string
	SegmentID            string
	TemplateID           string
	MaxMessagesPerMinute int
	ScheduledAt          *time.Time
	ExternalID           string
}

// ScheduleCampaignInput identifies a dispatch request.
type ScheduleCampaignInput struct {
	CampaignID  string
	ScheduledAt time.Time
	InitiatedBy string
}

// CampaignService orchestrates the Hidra campaign workflow: idempotent
// creation keyed on the gateway's external id, schedule dispatches with
// append-only run records, and full-replace metrics reconciliation.
// Gateway calls are a single attempt; there is no retry policy.
type CampaignService struct {
	campaigns CampaignStore
	configs   ConfigStore
	gateway   Gateway
	secrets   *utils.SecretBox
	events    EventPublisher
	collector *metrics.Collector
}

// NewCampaignService wires the campaign orchestrator.
func NewCampaignService(campaigns CampaignStore, configs ConfigStore, gateway Gateway, secrets *utils.SecretBox, events EventPublisher, collector *metrics.Collector) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		configs:   configs,
		gateway:   gateway,
		secrets:   secrets,
		events:    events,
		collector: collector,
	}
}

// UpdateConfig stores a member's gateway base URL and API key.  The key
// is encrypted before it reaches the repository.  When verify is set the
// connection is probed immediately and the stored status reflects the
// outcome.
func (s *CampaignService) UpdateConfig(ctx context.Context, userID, baseURL, apiKey string, verify bool) (model.EvolutionConfig, error) {
	encrypted, err := s.secrets.Encrypt(apiKey)
	if err != nil {
		return model.EvolutionConfig{}, err
	}
	cfg := model.EvolutionConfig{
		UserID:          userID,
		BaseURL:         strings.TrimRight(baseURL, "/"),
		APIKeyEncrypted: encrypted,
		Status:          model.EvolutionStatusDisconnected,
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return model.EvolutionConfig{}, err
	}
	if verify {
		now := time.Now().UTC()
		err := s.gateway.TestConnection(ctx, evolution.Credentials{BaseURL: cfg.BaseURL, APIKey: apiKey})
		if err != nil {
			s.collector.RecordGatewayFailure()
			if serr := s.configs.SetStatus(ctx, userID, model.EvolutionStatusError, err.Error(), now); serr != nil {
				return model.EvolutionConfig{}, serr
			}
		} else if serr := s.configs.SetStatus(ctx, userID, model.EvolutionStatusConnected, "", now); serr != nil {
			return model.EvolutionConfig{}, serr
		}
	}
	return s.configs.GetByUser(ctx, userID)
}

// credentials loads and decrypts a member's gateway credentials.
func (s *CampaignService) credentials(ctx context.Context, userID string) (evolution.Credentials, error) {
	cfg, err := s.configs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return evolution.Credentials{}, ErrGatewayNotConfigured
		}
		return evolution.Credentials{}, err
	}
	apiKey, err := s.secrets.Decrypt(cfg.APIKeyEncrypted)
	if err != nil {
		return evolution.Credentials{}, err
	}
	return evolution.Credentials{BaseURL: cfg.BaseURL, APIKey: apiKey}, nil
}

// markGatewayError records a failed gateway call on the member's config
// row.
func (s *CampaignService) markGatewayError(ctx context.Context, userID string, cause error) {
	s.collector.RecordGatewayFailure()
	_ = s.configs.SetStatus(ctx, userID, model.EvolutionStatusError, cause.Error(), time.Now().UTC())
}

// CreateCampaign creates a campaign on the gateway and mirrors it
// locally.  Creation is idempotent on the external id: when the input
// names an external id that a local campaign already references, that
// campaign's detail is returned unchanged with no second gateway call
// and no duplicate row.
func (s *CampaignService) CreateCampaign(ctx context.Context, in CreateCampaignInput) (CampaignDetail, error) {
	if in.ExternalID != "" {
		existing, err := s.campaigns.GetByExternalID(ctx, in.ExternalID)
		if err == nil {
			return s.Detail(ctx, existing.ID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return CampaignDetail{}, err
		}
	}

	creds, err := s.credentials(ctx, in.OwnerID)
	if err != nil {
		return CampaignDetail{}, err
	}
	state, err := s.gateway.CreateCampaign(ctx, creds, evolution.CampaignSpec{
		Name:                 in.Name,
		Description:          in.Description,
		SegmentID:            in.SegmentID,
		TemplateID:           in.TemplateID,
		MaxMessagesPerMinute: in.MaxMessagesPerMinute,
	})
	if err != nil {
		s.markGatewayError(ctx, in.OwnerID, err)
		return CampaignDetail{}, err
	}

	c := model.Campaign{
		ID:                   uuid.NewString(),
		OwnerID:              in.OwnerID,
		Name:                 in.Name,
		Channel:              model.CampaignChannelWhatsApp,
		Status:               mapGatewayStatus(state.Status),
		SegmentID:            in.SegmentID,
		TemplateID:           in.TemplateID,
		ExternalID:           &state.ID,
		MaxMessagesPerMinute: in.MaxMessagesPerMinute,
		ScheduledAt:          in.ScheduledAt,
	}
	if in.Description != "" {
		c.Description = &in.Description
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return CampaignDetail{}, err
	}
	return CampaignDetail{
		Campaign: c,
		Runs:     []model.CampaignRun{},
		Metrics:  model.CampaignMetrics{CampaignID: c.ID},
		Timeline: []model.CampaignTimelinePoint{},
	}, nil
}

// ScheduleCampaign asks the gateway to start the campaign at the given
// time and appends an audit run row.  The gateway call is fire and
// forget: there is no compensating action if the local write fails after
// the gateway accepted the schedule.
func (s *CampaignService) ScheduleCampaign(ctx context.Context, in ScheduleCampaignInput) (CampaignDetail, error) {
	c, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CampaignDetail{}, ErrCampaignNotFound
		}
		return CampaignDetail{}, err
	}
	if c.ExternalID == nil {
		return CampaignDetail{}, ErrCampaignNotFound
	}

	creds, err := s.credentials(ctx, c.OwnerID)
	if err != nil {
		return CampaignDetail{}, err
	}
	state, err := s.gateway.ScheduleCampaign(ctx, creds, *c.ExternalID, in.ScheduledAt)
	if err != nil {
		s.markGatewayError(ctx, c.OwnerID, err)
		return CampaignDetail{}, err
	}
	s.collector.RecordCampaignSchedule()

	status := mapGatewayStatus(state.Status)
	if status == model.CampaignStatusDraft {
		status = model.CampaignStatusScheduled
	}
	if err := s.campaigns.UpdateSchedule(ctx, c.ID, status, in.ScheduledAt); err != nil {
		return CampaignDetail{}, err
	}

	now := time.Now().UTC()
	scheduledFor := in.ScheduledAt
	run := model.CampaignRun{
		ID:           uuid.NewString(),
		CampaignID:   c.ID,
		StartedByID:  in.InitiatedBy,
		StartedAt:    now,
		ScheduledFor: &scheduledFor,
		Status:       status,
		Summary:      "schedule accepted by gateway",
	}
	if err := s.campaigns.CreateRun(ctx, run); err != nil {
		return CampaignDetail{}, err
	}

	// Audit event; a broker outage must not fail the schedule call.
	_ = s.events.PublishCampaignScheduled(ctx, queue.CampaignScheduledEvent{
		CampaignID:   c.ID,
		ExternalID:   *c.ExternalID,
		OwnerID:      c.OwnerID,
		InitiatedBy:  in.InitiatedBy,
		CampaignName: c.Name,
		Channel:      c.Channel,
		ScheduledFor: in.ScheduledAt.UTC().Format(time.RFC3339),
		ScheduledAt:  now.Format(time.RFC3339),
	})

	return s.Detail(ctx, c.ID)
}

// SyncMetrics fetches the gateway's counters for a campaign and
// overwrites the local snapshot wholesale.  Last write wins; there is no
// staleness check against concurrent syncs.
func (s *CampaignService) SyncMetrics(ctx context.Context, campaignID string) (model.CampaignMetrics, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.CampaignMetrics{}, ErrCampaignNotFound
		}
		return model.CampaignMetrics{}, err
	}
	if c.ExternalID == nil {
		return model.CampaignMetrics{}, ErrCampaignNotFound
	}

	creds, err := s.credentials(ctx, c.OwnerID)
	if err != nil {
		return model.CampaignMetrics{}, err
	}
	snap, err := s.gateway.GetCampaignMetrics(ctx, creds, *c.ExternalID)
	if err != nil {
		s.markGatewayError(ctx, c.OwnerID, err)
		return model.CampaignMetrics{}, err
	}
	s.collector.RecordMetricsSync()

	m := model.CampaignMetrics{
		CampaignID:        c.ID,
		Total:             snap.Total,
		Delivered:         snap.Delivered,
		Failed:            snap.Failed,
		Pending:           snap.Pending,
		AverageDeliveryMs: snap.AverageDeliveryMs,
		LastUpdatedAt:     snap.LastUpdatedAt,
	}
	if err := s.campaigns.ReplaceMetrics(ctx, m); err != nil {
		return model.CampaignMetrics{}, err
	}
	if status := mapGatewayStatus(snap.Status); status != c.Status {
		if err := s.campaigns.UpdateStatus(ctx, c.ID, status); err != nil {
			return model.CampaignMetrics{}, err
		}
	}
	// Record an hourly timeline bucket from the snapshot.
	point := model.CampaignTimelinePoint{
		Timestamp: snap.LastUpdatedAt.UTC().Truncate(time.Hour),
		Delivered: snap.Delivered,
		Failed:    snap.Failed,
	}
	if err := s.campaigns.UpsertTimelinePoint(ctx, c.ID, point); err != nil {
		return model.CampaignMetrics{}, err
	}
	return m, nil
}

// Detail assembles the full local view of a campaign.
func (s *CampaignService) Detail(ctx context.Context, campaignID string) (CampaignDetail, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CampaignDetail{}, ErrCampaignNotFound
		}
		return CampaignDetail{}, err
	}
	runs, err := s.campaigns.ListRuns(ctx, c.ID)
	if err != nil {
		return CampaignDetail{}, err
	}
	m, err := s.campaigns.GetMetrics(ctx, c.ID)
	if err != nil {
		return CampaignDetail{}, err
	}
	timeline, err := s.campaigns.ListTimelineByCampaign(ctx, c.ID)
	if err != nil {
		return CampaignDetail{}, err
	}
	if runs == nil {
		runs = []model.CampaignRun{}
	}
	if timeline == nil {
		timeline = []model.CampaignTimelinePoint{}
	}
	return CampaignDetail{Campaign: c, Runs: runs, Metrics: m, Timeline: timeline}, nil
}

// GetDashboard builds the Hidra dashboard: summary counters across the
// member's campaigns plus each campaign with its latest metrics.
func (s *CampaignService) GetDashboard(ctx context.Context, userID string) (Dashboard, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	list, err := s.campaigns.ListByOwner(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	overviews := make([]CampaignOverview, 0, len(list))
	for _, c := range list {
		m, err := s.campaigns.GetMetrics(ctx, c.ID)
		if err != nil {
			return Dashboard{}, err
		}
		overviews = append(overviews, CampaignOverview{Campaign: c, Metrics: m})
	}
	return Dashboard{Summary: summary, Campaigns: overviews}, nil
}

// Summary aggregates a member's campaigns into top-line counters and a
// merged delivery timeline.  The hub overview consumes this directly.
func (s *CampaignService) Summary(ctx context.Context, userID string) (DashboardSummary, error) {
	list, err := s.campaigns.ListByOwner(ctx, userID)
	if err != nil {
		return DashboardSummary{}, err
	}
	summary := DashboardSummary{TotalCampaigns: len(list)}
	for _, c := range list {
		if c.Status == model.CampaignStatusScheduled || c.Status == model.CampaignStatusRunning {
			summary.ActiveCampaigns++
		}
		m, err := s.campaigns.GetMetrics(ctx, c.ID)
		if err != nil {
			return DashboardSummary{}, err
		}
		summary.TotalDelivered += m.Delivered
		summary.TotalFailed += m.Failed
		summary.TotalPending += m.Pending
	}

	raw, err := s.campaigns.ListTimelineByOwner(ctx, userID)
	if err != nil {
		return DashboardSummary{}, err
	}
	summary.Timeline = MergeTimeline(raw)

	cfg, err := s.configs.GetByUser(ctx, userID)
	switch {
	case err == nil:
		summary.ConnectionStatus = cfg.Status
	case errors.Is(err, repository.ErrNotFound):
		summary.ConnectionStatus = model.EvolutionStatusDisconnected
	default:
		return DashboardSummary{}, err
	}
	return summary, nil
}

// MergeTimeline sums same-timestamp buckets coming from multiple
// campaigns and sorts the merged series ascending.
func MergeTimeline(points []model.CampaignTimelinePoint) []model.CampaignTimelinePoint {
	byTS := make(map[time.Time]*model.CampaignTimelinePoint, len(points))
	for _, p := range points {
		ts := p.Timestamp.UTC()
		if agg, ok := byTS[ts]; ok {
			agg.Delivered += p.Delivered
			agg.Failed += p.Failed
		} else {
			byTS[ts] = &model.CampaignTimelinePoint{Timestamp: ts, Delivered: p.Delivered, Failed: p.Failed}
		}
	}
	merged := make([]model.CampaignTimelinePoint, 0, len(byTS))
	for _, p := range byTS {
		merged = append(merged, *p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp.Before(merged[j].Timestamp) })
	return merged
}

// mapGatewayStatus normalizes the gateway's status strings onto the
// local enumeration.  Unknown values fall back to DRAFT.
func mapGatewayStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case model.CampaignStatusScheduled:
		return model.CampaignStatusScheduled
	case model.CampaignStatusRunning:
		return model.CampaignStatusRunning
	case model.CampaignStatusPaused:
		return model.CampaignStatusPaused
	case model.CampaignStatusCompleted:
		return model.CampaignStatusCompleted
	case model.CampaignStatusFailed:
		return model.CampaignStatusFailed
	default:
		return model.CampaignStatusDraft
	}
}
