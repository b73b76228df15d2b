// Package metrics defines and registers all custom Prometheus metrics for the
// back-office console. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the console at GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Session lifecycle metrics ─────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "rejected", "transport_error", "protocol_error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionVerificationsTotal counts verifySession outcomes.
// Label:
//   - result: "valid", "expiring", "invalid", "error", "stale", "skipped"
var SessionVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_verifications_total",
		Help:      "Total number of session verifications, by outcome.",
	},
	[]string{"result"},
)

// SessionInvalidationsTotal counts forced transitions to anonymous.
// Label:
//   - reason: "verify_invalid", "verify_error", "unauthorized", "expired", "logout"
var SessionInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_invalidations_total",
		Help:      "Total number of times the session was cleared, by reason.",
	},
	[]string{"reason"},
)

// SignUpsTotal counts merchant self-registrations.
// Label:
//   - result: "success", "rejected", "duplicate_email", "duplicate_username", "transport_error"
var SignUpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of merchant sign-up attempts, by result.",
	},
	[]string{"result"},
)

// AuthState is 1 for the current auth status and 0 for the others.
// Label:
//   - status: "loading", "anonymous", "authenticated"
var AuthState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_state",
		Help:      "Current authentication status of the console (1 = active).",
	},
	[]string{"status"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures round trips to the REST backend.
// Labels:
//   - operation: "login", "logout", "verify", "signup.<step>", or "<resource>.<op>" such as "products.list"
//   - outcome: "ok", "error"
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the REST backend.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation", "outcome"},
)

// SetAuthState flips the AuthState gauge to the given status.
func SetAuthState(status string) {
	for _, s := range []string{"loading", "anonymous", "authenticated"} {
		v := 0.0
		if s == status {
			v = 1
		}
		AuthState.WithLabelValues(s).Set(v)
	}
}
