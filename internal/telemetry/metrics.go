package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway call results.
const (
	GatewayOK       = "ok"
	GatewayRejected = "rejected"
	GatewayError    = "error"
)

var (
	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storepay",
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of outbound payment gateway calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "result"})

	checkoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storepay",
		Name:      "checkout_initializations_total",
		Help:      "Checkout initialization attempts by result.",
	}, []string{"result"})

	outcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storepay",
		Name:      "payment_outcomes_total",
		Help:      "Reconciled payment outcomes by state and channel.",
	}, []string{"state", "channel"})

	webhookTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storepay",
		Name:      "webhook_events_total",
		Help:      "Inbound gateway webhook events by event type and handling.",
	}, []string{"event", "handling"})
)

// ObserveGateway records one gateway call.
func ObserveGateway(operation, result string, started time.Time) {
	gatewayDuration.WithLabelValues(operation, result).Observe(time.Since(started).Seconds())
}

// CountCheckout records one initialization attempt.
func CountCheckout(result string) {
	checkoutTotal.WithLabelValues(result).Inc()
}

// CountOutcome records one reconciled outcome.
func CountOutcome(state, channel string) {
	outcomeTotal.WithLabelValues(state, channel).Inc()
}

// CountWebhook records one webhook delivery.
func CountWebhook(event, handling string) {
	webhookTotal.WithLabelValues(event, handling).Inc()
}
