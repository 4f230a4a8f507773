package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Chative-core-poc-v1/sheetsql/internal/metrics"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// SheetSource yields the current spreadsheet contents.
type SheetSource interface {
	Fetch(ctx context.Context) ([]Sheet, error)
}

// Invalidator is notified after tables were rewritten.
type Invalidator interface {
	Invalidate()
}

// Syncer copies the spreadsheet into the store.
type Syncer struct {
	source      SheetSource
	writer      *Writer
	invalidator Invalidator
	clock       clockwork.Clock
	metrics     *metrics.Recorder
}

func NewSyncer(source SheetSource, writer *Writer, invalidator Invalidator, clock clockwork.Clock, recorder *metrics.Recorder) *Syncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Syncer{
		source:      source,
		writer:      writer,
		invalidator: invalidator,
		clock:       clock,
		metrics:     recorder,
	}
}

// SyncOnce runs a single fetch and write cycle.
func (s *Syncer) SyncOnce(ctx context.Context) (report Report, err error) {
	start := s.clock.Now()
	defer func() {
		s.metrics.ObserveSync(err, report.TotalRows(), s.clock.Since(start))
	}()

	sheets, err := s.source.Fetch(ctx)
	if err != nil {
		return Report{}, err
	}
	report, err = s.writer.Write(ctx, sheets)
	if err != nil {
		return Report{}, err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}

	logx.Info().
		Int("tables", len(report.Tables)).
		Int("skipped", len(report.Skipped)).
		Int("rows", report.TotalRows()).
		Dur("duration", s.clock.Since(start)).
		Msg("Sheet sync completed")
	return report, nil
}

// RunEvery syncs immediately and then once per interval until ctx is done.
// A failed cycle is logged and the loop keeps going.
func (s *Syncer) RunEvery(ctx context.Context, interval time.Duration) error {
	s.runLogged(ctx)

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			s.runLogged(ctx)
		}
	}
}

func (s *Syncer) runLogged(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logx.Error().Err(err).Msg("Sheet sync failed")
	}
}
