package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.ObserveRun("database_query", "answered", time.Second)
	r.ObserveRun("", "error", time.Second)
	r.IncGeneration()
	r.IncGeneration()
	r.IncExecutionFailure()
	r.IncRetryExhausted()
	r.AddModelCost("gemini-2.5-flash", 0.25)
	r.AddModelCost("gemini-2.5-flash", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("database_query", "answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("unknown", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.GenerationAttemptsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ExecutionFailuresTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RetryExhaustedTotal))
	assert.InDelta(t, 0.25, testutil.ToFloat64(r.ModelCostUSD.WithLabelValues("gemini-2.5-flash")), 1e-9)
}

func TestRecorderSync(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.ObserveSync(nil, 12, time.Millisecond)
	r.ObserveSync(errors.New("boom"), 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.SyncTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SyncTotal.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.SyncRowsTotal))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun("conversation", "answered", time.Second)
		r.IncGeneration()
		r.IncExecutionFailure()
		r.IncRetryExhausted()
		r.AddModelCost("m", 1)
		r.ObserveSync(nil, 1, time.Second)
	})
}
