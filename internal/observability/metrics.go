package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Session metrics
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	SessionPollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_polls_total",
			Help: "Periodic session liveness checks performed",
		},
	)

	ForcedLogoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_forced_logouts_total",
			Help: "System-initiated logouts by trigger (init, poll)",
		},
		[]string{"trigger"},
	)

	// Backend API metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Requests made to the e-Dhumeni backend API",
		},
		[]string{"method", "status"},
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Toasts emitted by level",
		},
		[]string{"level"},
	)

	NotificationClientsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_clients_active",
			Help: "UI pages currently connected to the toast hub",
		},
	)
)
