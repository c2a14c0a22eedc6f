package estimator_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freezeClock(t *testing.T) clockwork.Clock {
	t.Helper()
	fc := clockwork.NewFakeClockAt(testNow)
	domain.SetClock(fc)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fc
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.HistoricalDateLayout, s)
	require.NoError(t, err)
	return d
}

type staticSource struct {
	records []domain.HistoricalRecord
	err     error
	calls   int
}

func (s *staticSource) Records(context.Context) ([]domain.HistoricalRecord, error) {
	s.calls++
	return s.records, s.err
}
