package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/siderhub/platform/internal/model"
)

// CampaignRepo provides access to the `campaigns` table and its owned
// `campaign_runs`, `campaign_metrics` and `campaign_timeline` tables.
type CampaignRepo struct{ DB *sql.DB }

func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{DB: db} }

const campaignColumns = "id, owner_id, name, description, channel, status, segment_id, template_id, external_id, max_messages_per_minute, scheduled_at, created_at, updated_at"

// Create inserts a campaign row.  A duplicate external id violates the
// unique index and surfaces as ErrConflict.
func (r *CampaignRepo) Create(ctx context.Context, c model.Campaign) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO campaigns (id, owner_id, name, description, channel, status, segment_id, template_id, external_id, max_messages_per_minute, scheduled_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		c.ID, c.OwnerID, c.Name, c.Description, c.Channel, c.Status, c.SegmentID, c.TemplateID, c.ExternalID, c.MaxMessagesPerMinute, c.ScheduledAt)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// GetByID fetches a campaign by its local id.
func (r *CampaignRepo) GetByID(ctx context.Context, id string) (model.Campaign, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+campaignColumns+" FROM campaigns WHERE id=? LIMIT 1", id))
}

// GetByExternalID fetches the campaign mirroring a gateway id.  This is
// the lookup-before-create check that keeps campaign creation idempotent.
func (r *CampaignRepo) GetByExternalID(ctx context.Context, externalID string) (model.Campaign, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+campaignColumns+" FROM campaigns WHERE external_id=? LIMIT 1", externalID))
}

// ListByOwner returns the owner's campaigns, newest first.
func (r *CampaignRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+campaignColumns+" FROM campaigns WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateSchedule records the status and scheduled time reported by the
// gateway after a schedule call.
func (r *CampaignRepo) UpdateSchedule(ctx context.Context, id, status string, scheduledAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE campaigns SET status=?, scheduled_at=? WHERE id=?", status, scheduledAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus records a status change reported by the gateway.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE campaigns SET status=? WHERE id=?", status, id)
	return err
}

// CreateRun appends a campaign run audit row.  Runs are never mutated.
func (r *CampaignRepo) CreateRun(ctx context.Context, run model.CampaignRun) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO campaign_runs (id, campaign_id, started_by_id, started_at, finished_at, scheduled_for, status, summary) VALUES (?,?,?,?,?,?,?,?)",
		run.ID, run.CampaignID, run.StartedByID, run.StartedAt, run.FinishedAt, run.ScheduledFor, run.Status, run.Summary)
	return err
}

// ListRuns returns a campaign's run history, newest first.
func (r *CampaignRepo) ListRuns(ctx context.Context, campaignID string) ([]model.CampaignRun, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, campaign_id, started_by_id, started_at, finished_at, scheduled_for, status, summary FROM campaign_runs WHERE campaign_id=? ORDER BY started_at DESC",
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CampaignRun
	for rows.Next() {
		var (
			run          model.CampaignRun
			finishedAt   sql.NullTime
			scheduledFor sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.CampaignID, &run.StartedByID, &run.StartedAt,
			&finishedAt, &scheduledFor, &run.Status, &run.Summary); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		if scheduledFor.Valid {
			t := scheduledFor.Time
			run.ScheduledFor = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// ReplaceMetrics overwrites the campaign's metrics row with the latest
// gateway snapshot.  Full replace, last write wins.
func (r *CampaignRepo) ReplaceMetrics(ctx context.Context, m model.CampaignMetrics) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO campaign_metrics (campaign_id, total, delivered, failed, pending, average_delivery_ms, last_updated_at)
         VALUES (?,?,?,?,?,?,?)
         ON DUPLICATE KEY UPDATE total=VALUES(total), delivered=VALUES(delivered), failed=VALUES(failed),
         pending=VALUES(pending), average_delivery_ms=VALUES(average_delivery_ms), last_updated_at=VALUES(last_updated_at)`,
		m.CampaignID, m.Total, m.Delivered, m.Failed, m.Pending, m.AverageDeliveryMs, m.LastUpdatedAt)
	return err
}

// GetMetrics returns the latest metrics snapshot for a campaign.  A
// campaign that has never synced yields zeroed counters, not an error.
func (r *CampaignRepo) GetMetrics(ctx context.Context, campaignID string) (model.CampaignMetrics, error) {
	var m model.CampaignMetrics
	err := r.DB.QueryRowContext(ctx,
		"SELECT campaign_id, total, delivered, failed, pending, average_delivery_ms, last_updated_at FROM campaign_metrics WHERE campaign_id=? LIMIT 1",
		campaignID).Scan(&m.CampaignID, &m.Total, &m.Delivered, &m.Failed, &m.Pending, &m.AverageDeliveryMs, &m.LastUpdatedAt)
	if err == sql.ErrNoRows {
		return model.CampaignMetrics{CampaignID: campaignID}, nil
	}
	return m, err
}

// UpsertTimelinePoint records a delivered/failed bucket for a campaign.
// Re-syncing the same bucket replaces its counts.
func (r *CampaignRepo) UpsertTimelinePoint(ctx context.Context, campaignID string, p model.CampaignTimelinePoint) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO campaign_timeline (campaign_id, bucket_at, delivered, failed) VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE delivered=VALUES(delivered), failed=VALUES(failed)`,
		campaignID, p.Timestamp, p.Delivered, p.Failed)
	return err
}

// ListTimelineByCampaign returns a campaign's buckets ordered ascending.
func (r *CampaignRepo) ListTimelineByCampaign(ctx context.Context, campaignID string) ([]model.CampaignTimelinePoint, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT bucket_at, delivered, failed FROM campaign_timeline WHERE campaign_id=? ORDER BY bucket_at ASC", campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimeline(rows)
}

// ListTimelineByOwner returns raw buckets across all of an owner's
// campaigns.  Same-timestamp buckets from different campaigns are
// returned separately; the dashboard service sums and sorts them.
func (r *CampaignRepo) ListTimelineByOwner(ctx context.Context, ownerID string) ([]model.CampaignTimelinePoint, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT t.bucket_at, t.delivered, t.failed FROM campaign_timeline t
         JOIN campaigns c ON c.id = t.campaign_id WHERE c.owner_id=?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimeline(rows)
}

func scanTimeline(rows *sql.Rows) ([]model.CampaignTimelinePoint, error) {
	var out []model.CampaignTimelinePoint
	for rows.Next() {
		var p model.CampaignTimelinePoint
		if err := rows.Scan(&p.Timestamp, &p.Delivered, &p.Failed); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) scanOne(row *sql.Row) (model.Campaign, error) {
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return model.Campaign{}, ErrNotFound
	}
	return c, err
}

func scanCampaign(s rowScanner) (model.Campaign, error) {
	var (
		c           model.Campaign
		description sql.NullString
		externalID  sql.NullString
		scheduledAt sql.NullTime
	)
	err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &description, &c.Channel, &c.Status,
		&c.SegmentID, &c.TemplateID, &externalID, &c.MaxMessagesPerMinute,
		&scheduledAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Campaign{}, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	if externalID.Valid {
		c.ExternalID = &externalID.String
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		c.ScheduledAt = &t
	}
	return c, nil
}
