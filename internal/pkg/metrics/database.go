// Package metrics holds the Prometheus collectors shared by the storage and
// service layers. It sits below both so neither imports the other.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corpdir_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"database", "statement"},
	)

	dbQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpdir_db_queries_total",
			Help: "Database queries by statement and result",
		},
		[]string{"database", "statement", "result"},
	)
)

// Query is one finished database round trip
type Query struct {
	Database  string
	Statement string
	Duration  time.Duration
	Failed    bool
	Slow      bool
}

// RecordQuery records a finished query
func RecordQuery(q Query) {
	dbQueryDuration.WithLabelValues(q.Database, q.Statement).Observe(q.Duration.Seconds())
	dbQueries.WithLabelValues(q.Database, q.Statement, q.result()).Inc()
}

func (q Query) result() string {
	switch {
	case q.Failed:
		return "error"
	case q.Slow:
		return "slow"
	default:
		return "ok"
	}
}
