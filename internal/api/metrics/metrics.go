// Package metrics defines and registers the custom Prometheus metrics of the
// wellness API. It is the single source of truth for metric names, labels and
// help strings. HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "respira"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unknown_user", "bad_password" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "exists", "bad_role", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts access tokens minted from a refresh token.
// Labels:
//   - source: "endpoint" (POST /auth/refresh) or "session" (middleware renewal)
//   - result: "success" or "rejected"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_refreshes_total",
		Help:      "Total number of access token refreshes, by source and result.",
	},
	[]string{"source", "result"},
)

// SessionRejectionsTotal counts requests rejected by the session middleware.
// Label:
//   - reason: the rejection message (e.g. "access denied", "invalid refresh token")
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_session_rejections_total",
		Help:      "Total number of requests rejected for lack of a valid session.",
	},
	[]string{"reason"},
)

// AuthorizationDeniedTotal counts requests stopped by the role gate.
var AuthorizationDeniedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_authorization_denied_total",
		Help:      "Total number of requests denied by role-based authorization.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Labels:
//   - kind: the auth event kind (e.g. "logged_in")
//   - result: "stored", "dropped" (queue full) or "failed" (insert error)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of auth audit events, by kind and outcome.",
	},
	[]string{"kind", "result"},
)

// AuditQueueDepth tracks the number of events waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)
