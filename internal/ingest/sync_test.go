package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/sheetsql/internal/metrics"
	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
)

type stubSource struct {
	calls  atomic.Int32
	sheets []Sheet
	err    error
}

func (s *stubSource) Fetch(context.Context) ([]Sheet, error) {
	s.calls.Add(1)
	return s.sheets, s.err
}

type countingInvalidator struct {
	mu    sync.Mutex
	count int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingInvalidator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func TestSyncOnceWritesAndInvalidates(t *testing.T) {
	db := newMemoryDB(t)
	src := &stubSource{sheets: []Sheet{{Name: "Tasks", Rows: []Row{NewRow("Status", "Done"), NewRow("Status", "Yes")}}}}
	inv := &countingInvalidator{}
	rec := metrics.New(prometheus.NewRegistry())

	syncer := NewSyncer(src, NewWriter(db, store.DialectSQLite), inv, clockwork.NewFakeClock(), rec)
	report, err := syncer.SyncOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalRows())
	assert.Equal(t, 1, inv.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.SyncTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.SyncRowsTotal))
}

func TestSyncOnceFetchFailureKeepsCache(t *testing.T) {
	src := &stubSource{err: errors.New("unreachable")}
	inv := &countingInvalidator{}
	rec := metrics.New(prometheus.NewRegistry())

	syncer := NewSyncer(src, NewWriter(newMemoryDB(t), store.DialectSQLite), inv, clockwork.NewFakeClock(), rec)
	_, err := syncer.SyncOnce(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, inv.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.SyncTotal.WithLabelValues("error")))
}

func TestRunEverySyncsOnTicks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &stubSource{sheets: []Sheet{{Name: "T", Rows: []Row{NewRow("a", "1")}}}}
	syncer := NewSyncer(src, NewWriter(newMemoryDB(t), store.DialectSQLite), nil, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- syncer.RunEvery(ctx, time.Minute) }()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunEvery did not stop")
	}
}

func TestRunEveryContinuesAfterFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &stubSource{err: errors.New("flaky")}
	syncer := NewSyncer(src, NewWriter(newMemoryDB(t), store.DialectSQLite), nil, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = syncer.RunEvery(ctx, time.Minute) }()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}
