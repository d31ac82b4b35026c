package calendar

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/width"
)

var (
	ErrNoTimestamp         = errors.New("no resolvable timestamp")
	ErrUntrackedInstrument = errors.New("instrument not in target set")
)

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05-0700",
		"2006-01-02 15:04:05Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	dateLayouts  = []string{"2006-01-02", "2006/01/02", "2006.01.02", "01-02-2006"}
	clockLayouts = []string{"15:04", "15:04:05", "3:04pm", "3pm"}
)

// timestampStrategy resolves an event time from one shape of raw record.
type timestampStrategy func(raw RawEvent, loc *time.Location) (time.Time, bool)

var timestampStrategies = []timestampStrategy{
	fromDateTime,
	fromDateAndClock,
	fromYearMonthDay,
}

type Normalizer struct {
	scheme       IdentityScheme
	targets      map[string]struct{}
	loc          *time.Location
	startHour    int
	unknownTitle string
}

func NewNormalizer(cfg *Config) *Normalizer {
	return &Normalizer{
		scheme:       cfg.Filter.IdentityScheme,
		targets:      targetSet(cfg.Filter.TargetInstruments, cfg.Filter.IdentityScheme),
		loc:          cfg.Location,
		startHour:    cfg.Window.GetStartHour(),
		unknownTitle: cfg.Render.UnknownTitle,
	}
}

// Run converts raw into an Event. A non-nil error means the record is
// rejected and should be dropped; it is never a batch failure.
func (n *Normalizer) Run(raw RawEvent, now time.Time) (Event, error) {
	occursAt, ok := n.resolveTimestamp(raw)
	if !ok {
		return Event{}, ErrNoTimestamp
	}

	instrument := n.resolveInstrument(raw)
	if _, tracked := n.targets[instrument]; !tracked {
		return Event{}, ErrUntrackedInstrument
	}

	return Event{
		Instrument: instrument,
		OccursAt:   occursAt,
		BucketAt:   n.correctMidnight(occursAt, now),
		Importance: resolveImportance(raw),
		Title:      n.resolveTitle(raw),
	}, nil
}

func (n *Normalizer) resolveTimestamp(raw RawEvent) (time.Time, bool) {
	for _, strategy := range timestampStrategies {
		if t, ok := strategy(raw, n.loc); ok {
			return t.In(n.loc), true
		}
	}
	return time.Time{}, false
}

// correctMidnight moves events dated yesterday but scheduled before the
// day-start hour onto today. Only the date changes; the clock is kept.
func (n *Normalizer) correctMidnight(t, now time.Time) time.Time {
	today := now.In(n.loc)
	yesterday := today.AddDate(0, 0, -1)

	ty, tm, td := t.Date()
	yy, ym, yd := yesterday.Date()
	if ty != yy || tm != ym || td != yd || t.Hour() >= n.startHour {
		return t
	}

	y, m, d := today.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), n.loc)
}

func (n *Normalizer) resolveInstrument(raw RawEvent) string {
	if code, ok := pickString(raw, currencyKeys...); ok {
		return CanonicalInstrument(code, n.scheme)
	}
	if country, ok := pickString(raw, countryKeys...); ok {
		return CanonicalInstrument(country, n.scheme)
	}
	return ""
}

func (n *Normalizer) resolveTitle(raw RawEvent) string {
	if title, ok := pickString(raw, titleKeys...); ok {
		return title
	}
	return n.unknownTitle
}

// ParseImportance maps a level name (case-insensitive) or a number onto the
// 0..3 scale. Numbers are clamped; anything else is ImportanceNone.
func ParseImportance(v any) Importance {
	if s, ok := v.(string); ok {
		key := fold(width.Narrow.String(s))
		for level, name := range importanceNames {
			if key == fold(name) {
				return level
			}
		}
	}

	f, ok := asFloat(v)
	if !ok {
		return ImportanceNone
	}
	switch {
	case f <= 0:
		return ImportanceNone
	case f >= float64(ImportanceHigh):
		return ImportanceHigh
	default:
		return Importance(int(f))
	}
}

func resolveImportance(raw RawEvent) Importance {
	v, ok := pickValue(raw, impactKeys...)
	if !ok {
		return ImportanceNone
	}
	return ParseImportance(v)
}

func fromDateTime(raw RawEvent, loc *time.Location) (time.Time, bool) {
	for _, key := range dateTimeKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}

		if t, ok := epochSeconds(v); ok {
			return t, true
		}

		s, ok := asString(v)
		if !ok {
			continue
		}
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func fromDateAndClock(raw RawEvent, loc *time.Location) (time.Time, bool) {
	dateStr, ok := pickString(raw, dateKeys...)
	if !ok {
		return time.Time{}, false
	}
	clockStr, ok := pickString(raw, timeKeys...)
	if !ok {
		return time.Time{}, false
	}

	date, ok := parseDate(dateStr)
	if !ok {
		return time.Time{}, false
	}
	clock, ok := parseClock(clockStr)
	if !ok {
		return time.Time{}, false
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, loc), true
}

func fromYearMonthDay(raw RawEvent, loc *time.Location) (time.Time, bool) {
	y, ok := pickInt(raw, yearKeys...)
	if !ok {
		return time.Time{}, false
	}
	m, ok := pickInt(raw, monthKeys...)
	if !ok || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, ok := pickInt(raw, dayKeys...)
	if !ok || d < 1 || d > 31 {
		return time.Time{}, false
	}

	var hour, minute, second int
	if clockStr, present := pickString(raw, timeKeys...); present {
		clock, ok := parseClock(clockStr)
		if !ok {
			return time.Time{}, false
		}
		hour, minute, second = clock.Hour(), clock.Minute(), clock.Second()
	}

	t := time.Date(y, time.Month(m), d, hour, minute, second, 0, loc)
	if t.Day() != d {
		return time.Time{}, false // e.g. February 30th rolled over
	}
	return t, true
}

// epochSeconds accepts numeric Unix timestamps; small numbers are not
// plausible event times and are ignored.
func epochSeconds(v any) (time.Time, bool) {
	if s, ok := v.(string); ok && strings.ContainsAny(s, "-:/T ") {
		return time.Time{}, false
	}
	f, ok := asFloat(v)
	if !ok || f < 1e9 {
		return time.Time{}, false
	}
	return time.Unix(int64(f), 0), true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(s string) (time.Time, bool) {
	s = strings.ToLower(strings.ReplaceAll(width.Narrow.String(s), " ", ""))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func targetSet(instruments []string, scheme IdentityScheme) map[string]struct{} {
	set := make(map[string]struct{}, len(instruments))
	for _, instrument := range instruments {
		if canonical := CanonicalInstrument(instrument, scheme); canonical != "" {
			set[canonical] = struct{}{}
		}
	}
	return set
}
