package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "invalid", outcome(apperrors.Validation()))
	assert.Equal(t, "conflict", outcome(apperrors.NewUniqueConstraintError(nil)))
	assert.Equal(t, "conflict", outcome(apperrors.Conflict("exists")))
	assert.Equal(t, "rejected", outcome(apperrors.NotFound("User")))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

func TestOperationRecorder(t *testing.T) {
	record := OperationRecorder("test_service")
	record("get", 5*time.Millisecond, nil)
	record("get", time.Millisecond, apperrors.NotFound("User"))

	assert.Equal(t, float64(1), testutil.ToFloat64(operationTotal.WithLabelValues("test_service", "get", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(operationTotal.WithLabelValues("test_service", "get", "rejected")))
}

func TestRecordQuery(t *testing.T) {
	RecordQuery(Query{Database: "test_db", Statement: "select", Duration: time.Millisecond})
	RecordQuery(Query{Database: "test_db", Statement: "insert", Duration: time.Second, Slow: true})
	RecordQuery(Query{Database: "test_db", Statement: "insert", Failed: true, Slow: true})

	assert.Equal(t, float64(1), testutil.ToFloat64(dbQueries.WithLabelValues("test_db", "select", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(dbQueries.WithLabelValues("test_db", "insert", "slow")))
	assert.Equal(t, float64(1), testutil.ToFloat64(dbQueries.WithLabelValues("test_db", "insert", "error")))
}
