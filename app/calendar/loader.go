package calendar

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHeader       = ":bar_chart: *本日の重要経済指標（7カ国・★2以上）*"
	defaultEmptyMessage = "本日は対象国の重要指標がありません。"
	defaultUnknownTitle = "不明"
	defaultStar         = "★"
	defaultTimezone     = "+09:00"
	defaultImportance   = 2
)

var offsetPattern = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// Loader reads and validates the calendar configuration file.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Run() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	slog.Debug("Configuration loaded",
		"path", l.path,
		"sources", len(cfg.Sources),
		"fetch_mode", cfg.FetchMode,
		"scheme", cfg.Filter.IdentityScheme,
		"min_importance", cfg.Filter.MinImportance,
		"window", cfg.Window.Mode,
		"start_hour", cfg.Window.GetStartHour(),
		"timezone", cfg.Location.String())

	return cfg, nil
}

// Parse decodes YAML calendar configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	loc, err := ParseLocation(cfg.Window.ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reference timezone: %w", err)
	}
	cfg.Location = loc

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.FetchMode == "" {
		cfg.FetchMode = FetchModeFirst
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Format == "" {
			cfg.Sources[i].Format = FormatJSON
		}
		if cfg.Sources[i].Name == "" {
			cfg.Sources[i].Name = fmt.Sprintf("source-%d", i+1)
		}
		if cfg.Sources[i].Timeout == 0 {
			cfg.Sources[i].Timeout = 30 // seconds
		}
	}

	if cfg.Filter.IdentityScheme == "" {
		cfg.Filter.IdentityScheme = SchemeCurrencyCode
	}
	if len(cfg.Filter.TargetInstruments) == 0 {
		cfg.Filter.TargetInstruments = DefaultTargets(cfg.Filter.IdentityScheme)
	}
	if cfg.Filter.MinImportance == 0 {
		cfg.Filter.MinImportance = defaultImportance
	}

	if cfg.Window.Mode == "" {
		cfg.Window.Mode = WindowRolling
	}
	if cfg.Window.StartHour == nil {
		hour := 6
		cfg.Window.StartHour = &hour
	}
	if cfg.Window.ReferenceTimezone == "" {
		cfg.Window.ReferenceTimezone = defaultTimezone
	}

	if cfg.Render.Header == "" {
		cfg.Render.Header = defaultHeader
	}
	if cfg.Render.EmptyMessage == "" {
		cfg.Render.EmptyMessage = defaultEmptyMessage
	}
	if cfg.Render.UnknownTitle == "" {
		cfg.Render.UnknownTitle = defaultUnknownTitle
	}
	if cfg.Render.Star == "" {
		cfg.Render.Star = defaultStar
	}
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	validFormats := map[string]bool{
		FormatJSON: true,
		FormatRSS:  true,
	}

	for i, source := range cfg.Sources {
		if source.URL == "" {
			return fmt.Errorf("source URL is required at index %d", i)
		}
		if !validFormats[source.Format] {
			return fmt.Errorf("invalid source format at index %d: %s", i, source.Format)
		}
		if source.Timeout < 0 {
			return fmt.Errorf("source timeout must be non-negative at index %d", i)
		}
	}

	if cfg.FetchMode != FetchModeFirst && cfg.FetchMode != FetchModeMerge {
		return fmt.Errorf("invalid fetch mode: %s", cfg.FetchMode)
	}

	switch cfg.Filter.IdentityScheme {
	case SchemeCurrencyCode, SchemeCountryName:
	default:
		return fmt.Errorf("invalid identity scheme: %s", cfg.Filter.IdentityScheme)
	}

	if cfg.Filter.MinImportance < 1 || cfg.Filter.MinImportance > 3 {
		return fmt.Errorf("min importance must be between 1 and 3, got %d", cfg.Filter.MinImportance)
	}

	switch cfg.Window.Mode {
	case WindowRolling, WindowCalendarDay:
	default:
		return fmt.Errorf("invalid window mode: %s", cfg.Window.Mode)
	}

	if hour := cfg.Window.GetStartHour(); hour < 0 || hour > 23 {
		return fmt.Errorf("window start hour must be between 0 and 23, got %d", hour)
	}

	return nil
}

// ParseLocation accepts a fixed offset ("+09:00", "UTC+9", "GMT-0530"),
// "UTC", or an IANA zone name.
func ParseLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") || strings.EqualFold(name, "GMT") {
		return time.UTC, nil
	}

	if m := offsetPattern.FindStringSubmatch(strings.ToUpper(name)); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("offset out of range: %s", name)
		}

		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(name, offset), nil
	}

	return time.LoadLocation(name)
}
