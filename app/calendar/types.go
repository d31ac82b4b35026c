package calendar

import (
	"time"
)

// Feed record types

// RawEvent is one untrusted record as decoded from an upstream feed. Every key
// is optional and every value may be malformed.
type RawEvent map[string]any

type Importance int

const (
	ImportanceNone Importance = iota
	ImportanceLow
	ImportanceMedium
	ImportanceHigh
)

var importanceNames = map[Importance]string{
	ImportanceLow:    "Low",
	ImportanceMedium: "Medium",
	ImportanceHigh:   "High",
}

func (i Importance) String() string {
	if name, ok := importanceNames[i]; ok {
		return name
	}
	return "None"
}

type Event struct {
	Instrument string
	OccursAt   time.Time
	BucketAt   time.Time // OccursAt after the midnight correction, used for window checks
	Importance Importance
	Title      string
}

type Stats struct {
	Raw            int
	Rejected       int
	OutOfWindow    int
	BelowThreshold int
	Duplicates     int
	Emitted        int
}

type Digest struct {
	Events  []Event
	Lines   []string
	Message string
	Stats   Stats
}

// Configuration types

type IdentityScheme string

const (
	SchemeCurrencyCode IdentityScheme = "currency-code"
	SchemeCountryName  IdentityScheme = "country-name"
)

type WindowMode string

const (
	WindowRolling     WindowMode = "rolling"
	WindowCalendarDay WindowMode = "calendar-day"
)

const (
	FetchModeFirst = "first"
	FetchModeMerge = "merge"
)

const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

type Config struct {
	Sources   []SourceConfig `yaml:"sources"`
	FetchMode string         `yaml:"fetch_mode"`
	Filter    FilterConfig   `yaml:"filter"`
	Window    WindowConfig   `yaml:"window"`
	Render    RenderConfig   `yaml:"render"`

	Location *time.Location `yaml:"-"` // resolved from Window.ReferenceTimezone
}

type SourceConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Format  string `yaml:"format"`  // json or rss
	Timeout int    `yaml:"timeout"` // seconds
}

type FilterConfig struct {
	TargetInstruments []string       `yaml:"target_instruments"`
	MinImportance     int            `yaml:"min_importance"`
	IdentityScheme    IdentityScheme `yaml:"identity_scheme"`
}

type WindowConfig struct {
	Mode              WindowMode `yaml:"mode"`
	StartHour         *int       `yaml:"start_hour"`
	ReferenceTimezone string     `yaml:"reference_timezone"`
}

type RenderConfig struct {
	Header       string `yaml:"header"`
	EmptyMessage string `yaml:"empty_message"`
	UnknownTitle string `yaml:"unknown_title"`
	Star         string `yaml:"star"`
	ShowRawCount bool   `yaml:"show_raw_count"`
}
