package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay lifecycle counters, exported on the health listener's /metrics.
var (
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaybot",
		Name:      "requests_created_total",
		Help:      "Confirmed user submissions persisted as requests.",
	})
	RepliesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaybot",
		Name:      "replies_delivered_total",
		Help:      "Owner replies delivered back to request authors.",
	})
	RequestsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaybot",
		Name:      "requests_rejected_total",
		Help:      "Requests rejected by the owner.",
	})
	BansIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaybot",
		Name:      "bans_issued_total",
		Help:      "Ban records created or refreshed.",
	})
	SubmissionsBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaybot",
		Name:      "submissions_blocked_total",
		Help:      "Submissions stopped before processing, by gate.",
	}, []string{"gate"})
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaybot",
		Name:      "send_failures_total",
		Help:      "Outbound messages dropped after exhausting retries.",
	})
)
