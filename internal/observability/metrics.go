package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses by error code.",
		},
		[]string{"method", "path", "code"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	GuardRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_guard_rejections_total",
			Help: "Requests rejected by the authentication or role guard.",
		},
		[]string{"reason"},
	)

	SessionsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_closed_total",
			Help: "Sessions deactivated, by reason.",
		},
		[]string{"reason"},
	)

	EventsRelayedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_relayed_total",
			Help: "Domain events handed to the broker, by outcome.",
		},
		[]string{"outcome"},
	)
)

// MustRegister registers every collector on reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		HTTPErrorsTotal,
		AuthLoginsTotal,
		GuardRejectionsTotal,
		SessionsClosedTotal,
		EventsRelayedTotal,
	)
}
