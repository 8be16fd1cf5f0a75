package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitpass_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_bookings_total",
			Help: "Total number of class bookings",
		},
		[]string{"outcome"},
	)

	CreditTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_credit_transactions_total",
			Help: "Total number of credit ledger transactions",
		},
		[]string{"type"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_webhook_events_total",
			Help: "Total number of processed payment webhook events",
		},
		[]string{"type", "outcome"},
	)

	WebhookLookupMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_webhook_lookup_misses_total",
			Help: "Webhook events referencing a subscription with no local membership",
		},
		[]string{"type"},
	)

	CheckoutSessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitpass_checkout_sessions_total",
			Help: "Total number of checkout sessions created",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpass_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitpass_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ActiveMemberships = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitpass_active_memberships",
			Help: "Number of non-cancelled memberships by status",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordCreditTransaction(txType string) {
	CreditTransactionsTotal.WithLabelValues(txType).Inc()
}

func RecordWebhookEvent(eventType, outcome string) {
	WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func RecordWebhookLookupMiss(eventType string) {
	WebhookLookupMissesTotal.WithLabelValues(eventType).Inc()
}

func RecordCheckoutSession() {
	CheckoutSessionsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
