// Package metrics provides Prometheus instrumentation for the door server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "door"

	LabelResult = "result"
	LabelReason = "reason"

	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

var (
	// AuthenticationsTotal counts responses checked by the door, by result.
	AuthenticationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "authentications_total",
			Help:      "Total number of card responses checked, by result",
		},
		[]string{LabelResult},
	)

	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "broadcasts_total",
			Help:      "Total number of broadcasts sent to cards",
		},
	)

	EnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "enrollments_total",
			Help:      "Total number of enrollment requests, by result",
		},
		[]string{LabelResult},
	)

	RevocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "revocations_total",
			Help:      "Total number of revocation requests, by result",
		},
		[]string{LabelResult},
	)

	// Epoch is the door's current epoch, i.e. the number of revoked users.
	Epoch = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "epoch",
			Help:      "Current epoch (number of revocations so far)",
		},
	)

	RemainingRevocations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "remaining_revocations",
			Help:      "Number of revocations the door can still perform",
		},
	)

	AdminLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "admin_logins_total",
			Help:      "Total number of admin login attempts, by result",
		},
		[]string{LabelResult},
	)

	// RejectedTotal counts connections dropped before their request was handled.
	RejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rejected_total",
			Help:      "Total number of requests rejected without processing, by reason",
		},
		[]string{LabelReason},
	)
)

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

func RecordAuthentication(ok bool) {
	AuthenticationsTotal.WithLabelValues(result(ok)).Inc()
}

// RecordAuthenticationError counts responses the door could not check at all.
func RecordAuthenticationError() {
	AuthenticationsTotal.WithLabelValues(ResultError).Inc()
}

func RecordBroadcast() {
	BroadcastsTotal.Inc()
}

func RecordEnrollment(ok bool) {
	EnrollmentsTotal.WithLabelValues(result(ok)).Inc()
}

func RecordRevocation(ok bool) {
	RevocationsTotal.WithLabelValues(result(ok)).Inc()
}

func RecordAdminLogin(ok bool) {
	AdminLoginsTotal.WithLabelValues(result(ok)).Inc()
}

func RecordRejected(reason string) {
	RejectedTotal.WithLabelValues(reason).Inc()
}

// SetEpoch updates the epoch gauges.
func SetEpoch(index, remaining int) {
	Epoch.Set(float64(index))
	RemainingRevocations.Set(float64(remaining))
}
