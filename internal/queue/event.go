// Package queue defines message payloads exchanged over the message
// broker and the background consumer that audits campaign dispatches.
package queue

// CampaignScheduledEvent is published after a campaign is successfully
// scheduled on the Evolution gateway.  It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type CampaignScheduledEvent struct {
	CampaignID   string `json:"campaign_id"`
	ExternalID   string `json:"external_id"`
	OwnerID      string `json:"owner_id"`
	InitiatedBy  string `json:"initiated_by"`
	CampaignName string `json:"campaign_name"`
	Channel      string `json:"channel"`
	ScheduledFor string `json:"scheduled_for"`
	ScheduledAt  string `json:"scheduled_at"`
}
