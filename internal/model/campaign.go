package model

import "time"

// Campaign status values stored in campaigns.status.  They mirror the
// states reported by the Evolution gateway.
const (
	CampaignStatusDraft     = "DRAFT"
	CampaignStatusScheduled = "SCHEDULED"
	CampaignStatusRunning   = "RUNNING"
	CampaignStatusPaused    = "PAUSED"
	CampaignStatusCompleted = "COMPLETED"
	CampaignStatusFailed    = "FAILED"
)

// CampaignChannelWhatsApp is the only delivery channel currently wired.
const CampaignChannelWhatsApp = "WHATSAPP"

// Campaign is the local mirror of a campaign managed by the Evolution
// gateway.  ExternalID is the gateway's identifier; when non-null it maps
// to exactly one local row, which is what makes campaign creation
// idempotent.
//
// Fields:
//
//	ID                   – primary key identifier (uuid).
//	OwnerID              – user who created the campaign.
//	Name                 – display name.
//	Description          – optional free-text description.
//	Channel              – delivery channel (WHATSAPP).
//	Status               – campaign state (see CampaignStatus* constants).
//	SegmentID            – audience segment reference.
//	TemplateID           – message template reference.
//	ExternalID           – gateway identifier (nullable, unique when set).
//	MaxMessagesPerMinute – gateway-side rate limit.
//	ScheduledAt          – when the campaign should start (nullable).
//	CreatedAt            – timestamp of creation.
//	UpdatedAt            – timestamp of last update.
type Campaign struct {
	ID                   string     // campaigns.id
	OwnerID              string     // campaigns.owner_id
	Name                 string     // campaigns.name
	Description          *string    // campaigns.description (nullable)
	Channel              string     // campaigns.channel
	Status               string     // campaigns.status
	SegmentID            string     // campaigns.segment_id
	TemplateID           string     // campaigns.template_id
	ExternalID           *string    // campaigns.external_id (nullable, unique)
	MaxMessagesPerMinute int        // campaigns.max_messages_per_minute
	ScheduledAt          *time.Time // campaigns.scheduled_at (nullable)
	CreatedAt            time.Time  // campaigns.created_at
	UpdatedAt            time.Time  // campaigns.updated_at
}

// CampaignRun is an append-only audit record of a dispatch or schedule
// action.  Rows are created once and never mutated.
type CampaignRun struct {
	ID           string     // campaign_runs.id
	CampaignID   string     // campaign_runs.campaign_id
	StartedByID  string     // campaign_runs.started_by_id
	StartedAt    time.Time  // campaign_runs.started_at
	FinishedAt   *time.Time // campaign_runs.finished_at (nullable)
	ScheduledFor *time.Time // campaign_runs.scheduled_for (nullable)
	Status       string     // campaign_runs.status
	Summary      string     // campaign_runs.summary
}

// CampaignMetrics holds the latest delivery counters known for a
// campaign.  Each sync overwrites the row wholesale with the gateway's
// snapshot; counters are never merged incrementally.
type CampaignMetrics struct {
	CampaignID        string    // campaign_metrics.campaign_id
	Total             int       // campaign_metrics.total
	Delivered         int       // campaign_metrics.delivered
	Failed            int       // campaign_metrics.failed
	Pending           int       // campaign_metrics.pending
	AverageDeliveryMs int       // campaign_metrics.average_delivery_ms
	LastUpdatedAt     time.Time // campaign_metrics.last_updated_at
}

// CampaignTimelinePoint is one time bucket of delivered/failed counts.
// Dashboard aggregation sums same-timestamp buckets across campaigns and
// sorts the merged series ascending.
type CampaignTimelinePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Delivered int       `json:"delivered"`
	Failed    int       `json:"failed"`
}
