// Package metrics provides Prometheus metric collection and exposure.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the platform's operational counters.  It is shared
// by the HTTP middleware and the campaign service.
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       prometheus.Histogram
	logins            prometheus.Counter
	loginFailures     prometheus.Counter
	campaignSchedules prometheus.Counter
	metricsSyncs      prometheus.Counter
	gatewayFailures   prometheus.Counter
	hubSectionFails   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siderhub_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "siderhub_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siderhub_logins_total",
			Help: "Total successful logins",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siderhub_login_failures_total",
			Help: "Total rejected login attempts",
		}),
		campaignSchedules: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siderhub_campaign_schedules_total",
			Help: "Total campaign schedule dispatches to the gateway",
		}),
		metricsSyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siderhub_campaign_metric_syncs_total",
			Help: "Total campaign metrics syncs against the gateway",
		}),
		gatewayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "siderhub_gateway_failures_total",
			Help: "Total failed Evolution gateway calls",
		}),
		hubSectionFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "siderhub_hub_section_failures_total",
			Help: "Hub overview dependency failures by section",
		}, []string{"section"}),
	}
	reg.MustRegister(c.httpRequests, c.httpLatency, c.logins, c.loginFailures,
		c.campaignSchedules, c.metricsSyncs, c.gatewayFailures, c.hubSectionFails)
	return c
}

// RecordHTTPRequest counts one handled request and its latency.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(d.Seconds())
}

// RecordLogin counts a successful login.
func (c *Collector) RecordLogin() { c.logins.Inc() }

// RecordLoginFailure counts a rejected login attempt.
func (c *Collector) RecordLoginFailure() { c.loginFailures.Inc() }

// RecordCampaignSchedule counts a schedule dispatch.
func (c *Collector) RecordCampaignSchedule() { c.campaignSchedules.Inc() }

// RecordMetricsSync counts a metrics sync.
func (c *Collector) RecordMetricsSync() { c.metricsSyncs.Inc() }

// RecordGatewayFailure counts a failed gateway call.
func (c *Collector) RecordGatewayFailure() { c.gatewayFailures.Inc() }

// RecordHubSectionFailure counts one failed hub overview section.
func (c *Collector) RecordHubSectionFailure(section string) {
	c.hubSectionFails.WithLabelValues(section).Inc()
}

// Handler returns the HTTP handler serving the registry's metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
