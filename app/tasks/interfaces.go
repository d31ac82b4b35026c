package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/lysyi3m/calendar-comb/app/source"
)

// EventFetcher retrieves one batch of raw records from the upstream sources.
// Implemented by *source.Fetcher.
type EventFetcher interface {
	Run(ctx context.Context) (*source.Result, error)
}

var _ EventFetcher = (*source.Fetcher)(nil)

// MetricsRecorder receives per-run observations. Implemented by
// *metrics.Metrics; nil disables recording.
type MetricsRecorder interface {
	ObserveRun(outcome string, duration time.Duration, at time.Time)
	ObserveDigest(stats calendar.Stats)
	ObserveDelivery(sink string, err error)
}
