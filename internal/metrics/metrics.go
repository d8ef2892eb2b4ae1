package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldbook",
			Name:      "submission_total",
			Help:      "Count of booking submissions by result.",
		},
		[]string{"result"},
	)

	paymentsConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fieldbook",
			Name:      "payment_confirmed_total",
			Help:      "Count of orders observed reaching the terminal payment status.",
		},
	)

	pollTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fieldbook",
			Name:      "poll_tick_total",
			Help:      "Count of order status poll ticks issued.",
		},
	)

	staleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fieldbook",
			Name:      "stale_response_total",
			Help:      "Count of booking fetch responses discarded for a superseded sub-court.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(submissions, paymentsConfirmed, pollTicks, staleResponses)
	})
}

func IncSubmission(result string) {
	submissions.WithLabelValues(result).Inc()
}

func IncPaymentConfirmed() {
	paymentsConfirmed.Inc()
}

func IncPollTick() {
	pollTicks.Inc()
}

func IncStaleResponse() {
	staleResponses.Inc()
}
