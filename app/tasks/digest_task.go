package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/lysyi3m/calendar-comb/app/metrics"
	"github.com/lysyi3m/calendar-comb/app/notify"
)

// Report describes what a digest run produced.
type Report struct {
	RunID       string
	Source      string
	WindowStart time.Time
	WindowEnd   time.Time
	Digest      calendar.Digest
	Message     string // text handed (or, for previews, not handed) to the sink
	Failed      bool
	Delivered   bool
}

// DigestTask performs one fetch, pipeline and delivery cycle. Without a sink
// the task only renders, which is how previews are served.
type DigestTask struct {
	Task
	fetcher  EventFetcher
	pipeline *calendar.Pipeline
	sink     notify.Sink
	metrics  MetricsRecorder
	now      time.Time
	Report   Report
}

func NewDigestTask(fetcher EventFetcher, pipeline *calendar.Pipeline, sink notify.Sink, recorder MetricsRecorder, now time.Time) *DigestTask {
	taskType := TaskTypeSendDigest
	if sink == nil {
		taskType = TaskTypePreviewDigest
	}

	return &DigestTask{
		Task:     NewTask(taskType),
		fetcher:  fetcher,
		pipeline: pipeline,
		sink:     sink,
		metrics:  recorder,
		now:      now,
	}
}

// Execute returns an error only for batch-level failures. Those are still
// reported to the sink as an alert first; delivery errors are logged.
func (t *DigestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.Report.RunID = t.ID
	t.Report.WindowStart, t.Report.WindowEnd = t.pipeline.Window(t.now)

	result, err := t.fetcher.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}

		t.Report.Failed = true
		t.Report.Message = t.pipeline.Alert(alertText(err))
		t.deliver(ctx, t.Report.Message)
		t.observeRun(outcomeOf(err))

		return fmt.Errorf("failed to fetch calendar: %w", err)
	}

	t.Report.Source = result.Source
	t.Report.Digest = t.pipeline.Run(result.Events, t.now)
	t.Report.Message = t.Report.Digest.Message
	t.deliver(ctx, t.Report.Message)

	if t.metrics != nil {
		t.metrics.ObserveDigest(t.Report.Digest.Stats)
	}
	t.observeRun(metrics.OutcomeSuccess)

	stats := t.Report.Digest.Stats
	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"source", result.Source,
		"raw", stats.Raw,
		"rejected", stats.Rejected,
		"out_of_window", stats.OutOfWindow,
		"below_threshold", stats.BelowThreshold,
		"duplicates", stats.Duplicates,
		"emitted", stats.Emitted,
		"delivered", t.Report.Delivered,
		"duration", t.GetDuration())

	return nil
}

func (t *DigestTask) deliver(ctx context.Context, text string) {
	if t.sink == nil {
		return
	}

	err := t.sink.Deliver(ctx, text)
	if t.metrics != nil {
		t.metrics.ObserveDelivery(t.sink.Name(), err)
	}
	if err != nil {
		slog.Error("Delivery failed", "sink", t.sink.Name(), "id", t.ID, "error", err)
		return
	}
	t.Report.Delivered = true
}

func (t *DigestTask) observeRun(outcome string) {
	if t.metrics == nil {
		return
	}
	t.metrics.ObserveRun(outcome, t.GetDuration(), t.now)
}
