package evolution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateCampaign(t *testing.T) {
	var gotSpec CampaignSpec
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/campaigns", r.URL.Path)
		gotKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotSpec))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CampaignState{ID: "ext-42", Status: "draft"})
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	creds := Credentials{BaseURL: srv.URL + "/", APIKey: "k-123"} // trailing slash tolerated

	state, err := client.CreateCampaign(context.Background(), creds, CampaignSpec{
		Name:                 "Launch blast",
		SegmentID:            "seg-1",
		TemplateID:           "tpl-1",
		MaxMessagesPerMinute: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "ext-42", state.ID)
	assert.Equal(t, "draft", state.Status)
	assert.Equal(t, "k-123", gotKey)
	assert.Equal(t, "Launch blast", gotSpec.Name)
	assert.Equal(t, 30, gotSpec.MaxMessagesPerMinute)
}

func TestClient_ScheduleCampaign(t *testing.T) {
	when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/campaigns/ext-42/schedule", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, when.Format(time.RFC3339), body["scheduled_at"])
		json.NewEncoder(w).Encode(CampaignState{ID: "ext-42", Status: "scheduled", ScheduledAt: &when})
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	state, err := client.ScheduleCampaign(context.Background(), Credentials{BaseURL: srv.URL}, "ext-42", when)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", state.Status)
	require.NotNil(t, state.ScheduledAt)
	assert.True(t, state.ScheduledAt.Equal(when))
}

func TestClient_GetCampaignMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/campaigns/ext-42/metrics", r.URL.Path)
		json.NewEncoder(w).Encode(MetricsSnapshot{
			ID: "ext-42", Status: "running",
			Total: 100, Delivered: 60, Failed: 5, Pending: 35,
			AverageDeliveryMs: 420,
			LastUpdatedAt:     time.Date(2026, 3, 1, 9, 42, 0, 0, time.UTC),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	snap, err := client.GetCampaignMetrics(context.Background(), Credentials{BaseURL: srv.URL}, "ext-42")
	require.NoError(t, err)
	assert.Equal(t, 60, snap.Delivered)
	assert.Equal(t, "running", snap.Status)
}

func TestClient_TestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	assert.NoError(t, client.TestConnection(context.Background(), Credentials{BaseURL: srv.URL}))
}

func TestClient_non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	_, err := client.CreateCampaign(context.Background(), Credentials{BaseURL: srv.URL}, CampaignSpec{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	err = client.TestConnection(context.Background(), Credentials{BaseURL: srv.URL})
	assert.Error(t, err)
}

func TestClient_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(nil)
	err := client.TestConnection(context.Background(), Credentials{BaseURL: srv.URL})
	assert.Error(t, err)
}
