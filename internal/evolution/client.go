// Package evolution implements the HTTP client for the Evolution
// WhatsApp automation gateway.  The platform mirrors gateway campaigns
// locally; every call here is keyed by the member's own base URL and
// API key.
package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Credentials identify one member's gateway instance.  The API key is
// the decrypted value; decryption happens before the client is called.
type Credentials struct {
	BaseURL string
	APIKey  string
}

// CampaignSpec is the payload for creating a campaign on the gateway.
type CampaignSpec struct {
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	SegmentID            string `json:"segment_id"`
	TemplateID           string `json:"template_id"`
	MaxMessagesPerMinute int    `json:"max_messages_per_minute,omitempty"`
}

// CampaignState is the gateway's view of a campaign after a create or
// schedule call.
type CampaignState struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// MetricsSnapshot is the gateway's latest delivery counters for a
// campaign.  The local metrics row is overwritten with this snapshot on
// every sync.
type MetricsSnapshot struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"`
	Total             int       `json:"total"`
	Delivered         int       `json:"delivered"`
	Failed            int       `json:"failed"`
	Pending           int       `json:"pending"`
	AverageDeliveryMs int       `json:"average_delivery_ms"`
	LastUpdatedAt     time.Time `json:"last_updated_at"`
}

// Client calls the Evolution gateway API.  All methods make a single
// attempt; there is no retry or backoff around transient failures.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client using the given http.Client.  Passing nil
// falls back to a client with a 15s timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// CreateCampaign registers a new campaign on the gateway and returns
// its external id and initial status.
func (c *Client) CreateCampaign(ctx context.Context, creds Credentials, spec CampaignSpec) (CampaignState, error) {
	var state CampaignState
	err := c.do(ctx, creds, http.MethodPost, "/campaigns", spec, &state)
	return state, err
}

// ScheduleCampaign asks the gateway to start the campaign at the given
// time.
func (c *Client) ScheduleCampaign(ctx context.Context, creds Credentials, externalID string, scheduledAt time.Time) (CampaignState, error) {
	body := map[string]string{"scheduled_at": scheduledAt.UTC().Format(time.RFC3339)}
	var state CampaignState
	err := c.do(ctx, creds, http.MethodPost, "/campaigns/"+externalID+"/schedule", body, &state)
	return state, err
}

// GetCampaignMetrics fetches the gateway's delivery counters for a
// campaign.
func (c *Client) GetCampaignMetrics(ctx context.Context, creds Credentials, externalID string) (MetricsSnapshot, error) {
	var snap MetricsSnapshot
	err := c.do(ctx, creds, http.MethodGet, "/campaigns/"+externalID+"/metrics", nil, &snap)
	return snap, err
}

// TestConnection probes the gateway's health endpoint with the
// member's credentials.
func (c *Client) TestConnection(ctx context.Context, creds Credentials) error {
	return c.do(ctx, creds, http.MethodGet, "/health", nil, nil)
}

// do performs one gateway request.  Non-2xx responses and transport
// failures both surface as errors; the caller maps them to config
// status ERROR.
func (c *Client) do(ctx context.Context, creds Credentials, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	url := strings.TrimRight(creds.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", creds.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway returned status %d for %s %s", resp.StatusCode, method, path)
	}
	if out == nil {
		return nil
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
