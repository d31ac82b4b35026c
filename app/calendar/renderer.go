package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Renderer struct {
	cfg RenderConfig
	loc *time.Location
}

func NewRenderer(cfg *Config) *Renderer {
	return &Renderer{
		cfg: cfg.Render,
		loc: cfg.Location,
	}
}

// Sort orders events by scheduled time; ties keep their input order.
func Sort(events []Event) []Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return a.OccursAt.Compare(b.OccursAt)
	})
	return sorted
}

// Lines renders one line per event, or the single fallback line when there
// is nothing to report.
func (r *Renderer) Lines(events []Event, rawCount int) []string {
	if len(events) == 0 {
		return []string{r.emptyLine(rawCount)}
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, r.Line(event))
	}
	return lines
}

func (r *Renderer) Line(event Event) string {
	return fmt.Sprintf("【%s】%s （%s）（%s）",
		event.Instrument,
		event.OccursAt.In(r.loc).Format("15:04"),
		event.Title,
		strings.Repeat(r.cfg.Star, int(event.Importance)))
}

// Message joins the header and the body into the text handed to a sink.
func (r *Renderer) Message(lines []string) string {
	var buf strings.Builder

	buf.WriteString(r.cfg.Header)
	buf.WriteString("\n\n")
	buf.WriteString(strings.Join(lines, "\n"))

	return buf.String()
}

// Alert wraps a batch-level failure notice with the header.
func (r *Renderer) Alert(text string) string {
	return r.Message([]string{text})
}

func (r *Renderer) emptyLine(rawCount int) string {
	if !r.cfg.ShowRawCount {
		return r.cfg.EmptyMessage
	}
	return fmt.Sprintf("%s（取得 %d 件）", r.cfg.EmptyMessage, rawCount)
}
