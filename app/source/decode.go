package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/mmcdole/gofeed"
)

// Decoder turns a response body into raw calendar records.
type Decoder interface {
	Run(data []byte) ([]calendar.RawEvent, error)
}

func NewDecoder(format string) (Decoder, error) {
	switch format {
	case calendar.FormatJSON:
		return NewJSONDecoder(), nil
	case calendar.FormatRSS:
		return NewRSSDecoder(), nil
	default:
		return nil, fmt.Errorf("unknown source format: %s", format)
	}
}

type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

// Run expects a top-level array. Elements that are not objects are skipped
// like any other malformed record.
func (d *JSONDecoder) Run(data []byte) ([]calendar.RawEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: trailing data after top-level value")
	}

	list, ok := body.([]any)
	if !ok {
		return nil, ErrNotList
	}

	events := make([]calendar.RawEvent, 0, len(list))
	for _, element := range list {
		if record, ok := element.(map[string]any); ok {
			events = append(events, calendar.RawEvent(record))
		}
	}
	return events, nil
}

type RSSDecoder struct{}

func NewRSSDecoder() *RSSDecoder {
	return &RSSDecoder{}
}

// Run maps feed items onto the raw record keys understood by the normalizer.
// Namespaced elements such as <cal:impact> are copied by local name, taking
// namespaces in prefix order; the first category stands in for a missing
// country.
func (d *RSSDecoder) Run(data []byte) ([]calendar.RawEvent, error) {
	// gofeed parsers keep per-document state, so each body gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid feed: %w", err)
	}

	events := make([]calendar.RawEvent, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		events = append(events, d.normalizeItem(item))
	}
	return events, nil
}

func (d *RSSDecoder) normalizeItem(item *gofeed.Item) calendar.RawEvent {
	raw := calendar.RawEvent{}

	if item.Title != "" {
		raw["title"] = item.Title
	}
	if item.PublishedParsed != nil {
		raw["datetime"] = item.PublishedParsed.Format(time.RFC3339)
	}

	for _, prefix := range slices.Sorted(maps.Keys(item.Extensions)) {
		for name, values := range item.Extensions[prefix] {
			if _, exists := raw[name]; exists || len(values) == 0 {
				continue
			}
			raw[name] = values[0].Value
		}
	}

	_, hasCountry := raw["country"]
	_, hasCurrency := raw["currency"]
	if !hasCountry && !hasCurrency && len(item.Categories) > 0 {
		raw["country"] = item.Categories[0]
	}

	return raw
}
