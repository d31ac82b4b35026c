package calendar

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Key chains per logical field. Upstream feeds rename fields between
// versions; the first key holding a usable value wins.
var (
	dateTimeKeys = []string{"datetime", "date_time", "dateTime", "timestamp", "date"}
	dateKeys     = []string{"date", "event_date"}
	timeKeys     = []string{"time", "time_of_day", "event_time"}
	yearKeys     = []string{"year"}
	monthKeys    = []string{"month"}
	dayKeys      = []string{"day"}
	currencyKeys = []string{"currency", "currency_code", "ccy"}
	countryKeys  = []string{"country", "country_name", "region"}
	impactKeys   = []string{"impact", "importance", "level", "volatility"}
	titleKeys    = []string{"title", "event", "event_name", "name"}
)

// pickString returns the first non-empty value under keys, rendered as text.
func pickString(raw RawEvent, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := asString(raw[k]); ok {
			return s, true
		}
	}
	return "", false
}

// pickValue returns the first present, non-blank value under keys.
func pickValue(raw RawEvent, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func pickInt(raw RawEvent, keys ...string) (int, bool) {
	v, ok := pickValue(raw, keys...)
	if !ok {
		return 0, false
	}
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asString(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(width.Narrow.String(strings.TrimSpace(val)), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
