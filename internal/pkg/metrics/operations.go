package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

var (
	// operationDuration tracks service operation duration in seconds
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corpdir_operation_duration_seconds",
			Help:    "Service operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	// operationTotal counts service operation calls by outcome
	operationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpdir_operations_total",
			Help: "Total number of service operation calls",
		},
		[]string{"service", "operation", "outcome"},
	)
)

// OperationRecorder returns an observer recording calls of the named service
func OperationRecorder(service string) func(operation string, duration time.Duration, err error) {
	return func(operation string, duration time.Duration, err error) {
		RecordOperation(service, operation, duration, err)
	}
}

// RecordOperation records one service operation call
func RecordOperation(service, operation string, duration time.Duration, err error) {
	operationDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
	operationTotal.WithLabelValues(service, operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperrors.IsValidation(err):
		return "invalid"
	case apperrors.IsUniqueConstraint(err), apperrors.IsConflict(err):
		return "conflict"
	case apperrors.GetStatusCode(err) < 500:
		return "rejected"
	default:
		return "error"
	}
}
