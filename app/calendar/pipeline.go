package calendar

import (
	"log/slog"
	"time"
)

// Pipeline turns a batch of raw feed records into the rendered digest. It
// holds configuration only; every Run derives its result from scratch.
type Pipeline struct {
	normalizer *Normalizer
	window     *Window
	filterer   *Filterer
	renderer   *Renderer
}

func NewPipeline(cfg *Config) *Pipeline {
	return &Pipeline{
		normalizer: NewNormalizer(cfg),
		window:     NewWindow(cfg),
		filterer:   NewFilterer(cfg),
		renderer:   NewRenderer(cfg),
	}
}

func (p *Pipeline) Run(raw []RawEvent, now time.Time) Digest {
	stats := Stats{Raw: len(raw)}

	inWindow := make([]Event, 0, len(raw))
	for i, record := range raw {
		event, err := p.normalizer.Run(record, now)
		if err != nil {
			stats.Rejected++
			slog.Debug("Record rejected", "index", i, "reason", err)
			continue
		}

		if !p.window.Contains(event.BucketAt, now) {
			stats.OutOfWindow++
			continue
		}
		inWindow = append(inWindow, event)
	}

	eligible := p.filterer.Run(inWindow)
	stats.BelowThreshold = len(inWindow) - len(eligible)

	unique, duplicates := Dedupe(eligible)
	stats.Duplicates = duplicates

	events := Sort(unique)
	stats.Emitted = len(events)

	lines := p.renderer.Lines(events, stats.Raw)

	return Digest{
		Events:  events,
		Lines:   lines,
		Message: p.renderer.Message(lines),
		Stats:   stats,
	}
}

// Alert renders a batch-level failure notice for delivery.
func (p *Pipeline) Alert(text string) string {
	return p.renderer.Alert(text)
}

// Window returns the reporting period for a run at now.
func (p *Pipeline) Window(now time.Time) (time.Time, time.Time) {
	return p.window.Bounds(now)
}
