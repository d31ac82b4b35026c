package api

import (
	"net/http"
	"time"

	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/lysyi3m/calendar-comb/app/notify"
	"github.com/lysyi3m/calendar-comb/app/tasks"
)

type Handler struct {
	calendarCfg *calendar.Config
	fetcher     tasks.EventFetcher
	pipeline    *calendar.Pipeline
	sink        notify.Sink
	metrics     MetricsInterface
	version     string
	now         func() time.Time
}

// MetricsInterface is satisfied by *metrics.Metrics.
type MetricsInterface interface {
	tasks.MetricsRecorder
	Handler() http.Handler
}

type windowResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type eventResponse struct {
	Instrument string    `json:"instrument"`
	OccursAt   time.Time `json:"occurs_at"`
	Importance int       `json:"importance"`
	Title      string    `json:"title"`
}

type statsResponse struct {
	Raw            int `json:"raw"`
	Rejected       int `json:"rejected"`
	OutOfWindow    int `json:"out_of_window"`
	BelowThreshold int `json:"below_threshold"`
	Duplicates     int `json:"duplicates"`
	Emitted        int `json:"emitted"`
}

type digestResponse struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Window    windowResponse  `json:"window"`
	Message   string          `json:"message"`
	Lines     []string        `json:"lines"`
	Events    []eventResponse `json:"events"`
	Stats     statsResponse   `json:"stats"`
	Delivered bool            `json:"delivered"`
}

func newDigestResponse(report tasks.Report, loc *time.Location) digestResponse {
	events := make([]eventResponse, 0, len(report.Digest.Events))
	for _, event := range report.Digest.Events {
		events = append(events, eventResponse{
			Instrument: event.Instrument,
			OccursAt:   event.OccursAt.In(loc),
			Importance: int(event.Importance),
			Title:      event.Title,
		})
	}

	stats := report.Digest.Stats
	return digestResponse{
		ID:      report.RunID,
		Source:  report.Source,
		Window:  windowResponse{Start: report.WindowStart, End: report.WindowEnd},
		Message: report.Message,
		Lines:   report.Digest.Lines,
		Events:  events,
		Stats: statsResponse{
			Raw:            stats.Raw,
			Rejected:       stats.Rejected,
			OutOfWindow:    stats.OutOfWindow,
			BelowThreshold: stats.BelowThreshold,
			Duplicates:     stats.Duplicates,
			Emitted:        stats.Emitted,
		},
		Delivered: report.Delivered,
	}
}
