// Package metrics declares the Prometheus collectors the service exports on
// /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FriendTransitions counts friendship lifecycle operations by outcome.
	FriendTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beer_rating_friend_transitions_total",
		Help: "Friendship lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	// PendingSubscriptions is the number of open pending-request streams.
	PendingSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beer_rating_pending_subscriptions",
		Help: "Open subscriptions to pending friend requests",
	})

	// ReviewsCreated counts stored reviews.
	ReviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beer_rating_reviews_created_total",
		Help: "Reviews stored",
	})

	// SweptRequests counts friend requests removed by the maintenance sweep.
	SweptRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beer_rating_swept_requests_total",
		Help: "Friend requests removed by the sweep by reason",
	}, []string{"reason"})

	// HTTPDuration observes request latency by route and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "beer_rating_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "route", "status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
