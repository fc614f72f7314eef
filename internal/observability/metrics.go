package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcome label values.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginError   = "error"
)

var (
	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialcore_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// Registrations counts created profiles.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialcore_registrations_total",
		Help: "Total number of registered profiles",
	})

	// FollowOperations counts follow graph mutations by operation and whether the edge set changed.
	FollowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialcore_follow_operations_total",
		Help: "Total follow/unfollow operations by operation and result",
	}, []string{"operation", "result"})

	// CacheRequests counts profile cache lookups by result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialcore_cache_requests_total",
		Help: "Total profile cache lookups by result",
	}, []string{"result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialcore_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnections is the gauge of active follow-event websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialcore_websocket_connections",
		Help: "Number of active follow-event WebSocket connections",
	})

	// WebSocketDrops counts events dropped because a client's send buffer was full.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialcore_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket events dropped due to backpressure",
	})
)
