package calendar

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestPipeline_TargetSetScenario(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	raw := []RawEvent{
		{"currency": "USD", "date": "2024-05-01", "time": "21:30", "impact": "High", "title": "Nonfarm Payrolls"},
		{"currency": "CHF", "date": "2024-05-01", "time": "10:00", "impact": "High", "title": "SNB Statement"},
	}

	digest := pipeline.Run(raw, testNow)

	expected := []string{"【USD】21:30 （Nonfarm Payrolls）（★★★）"}
	if !reflect.DeepEqual(digest.Lines, expected) {
		t.Errorf("Expected lines %q, got %q", expected, digest.Lines)
	}
	if digest.Stats.Rejected != 1 {
		t.Errorf("Expected 1 rejected record, got %d", digest.Stats.Rejected)
	}
	if digest.Stats.Emitted != 1 {
		t.Errorf("Expected 1 emitted event, got %d", digest.Stats.Emitted)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	cfg := testConfig(t, "")
	pipeline := NewPipeline(cfg)

	digest := pipeline.Run(nil, testNow)

	if !reflect.DeepEqual(digest.Lines, []string{cfg.Render.EmptyMessage}) {
		t.Errorf("Expected only the fallback line, got %q", digest.Lines)
	}
	expectedMessage := cfg.Render.Header + "\n\n" + cfg.Render.EmptyMessage
	if digest.Message != expectedMessage {
		t.Errorf("Expected message %q, got %q", expectedMessage, digest.Message)
	}
}

func TestPipeline_EmptyWithRawCount(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, `
render:
  show_raw_count: true
`))

	digest := pipeline.Run([]RawEvent{{"currency": "CHF"}, {"title": "junk"}}, testNow)

	if len(digest.Lines) != 1 || !strings.Contains(digest.Lines[0], "2") {
		t.Errorf("Expected fallback line with raw count 2, got %q", digest.Lines)
	}
}

func TestPipeline_RawCountCountsEveryInputRecord(t *testing.T) {
	cfg := testConfig(t, `
render:
  show_raw_count: true
`)
	pipeline := NewPipeline(cfg)

	raw := []RawEvent{{"currency": "CHF", "date": "2024-05-01", "time": "10:00", "impact": "High"}}
	once := pipeline.Run(raw, testNow)
	twice := pipeline.Run(append(slices.Clone(raw), raw...), testNow)

	if once.Lines[0] != cfg.Render.EmptyMessage+"（取得 1 件）" {
		t.Errorf("Unexpected fallback line: %q", once.Lines[0])
	}
	if twice.Lines[0] != cfg.Render.EmptyMessage+"（取得 2 件）" {
		t.Errorf("Expected doubled input to report 2 raw records, got %q", twice.Lines[0])
	}

	plain := NewPipeline(testConfig(t, ""))
	if !reflect.DeepEqual(plain.Run(raw, testNow).Lines, plain.Run(append(slices.Clone(raw), raw...), testNow).Lines) {
		t.Error("Expected doubled input to render the same fallback without the raw count")
	}
}

func TestPipeline_DuplicatedInputIsIdempotent(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	raw := sampleFeed()
	once := pipeline.Run(raw, testNow)
	twice := pipeline.Run(append(slices.Clone(raw), raw...), testNow)

	if !reflect.DeepEqual(once.Lines, twice.Lines) {
		t.Errorf("Expected doubled feed to render the same lines.\nonce:  %q\ntwice: %q", once.Lines, twice.Lines)
	}
	if twice.Stats.Duplicates != once.Stats.Emitted {
		t.Errorf("Expected %d duplicates, got %d", once.Stats.Emitted, twice.Stats.Duplicates)
	}
}

func TestPipeline_RepeatedRunsMatch(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	first := pipeline.Run(sampleFeed(), testNow)
	second := pipeline.Run(sampleFeed(), testNow)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical digests for identical input")
	}
}

func TestPipeline_CountryAndCurrencyDeduplicate(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	raw := []RawEvent{
		{"country": "United States", "date": "2024-05-01", "time": "21:30", "impact": 3, "title": "CPI m/m"},
		{"currency": "USD", "date": "2024-05-01", "time": "21:30", "impact": "High", "title": "CPI m/m"},
	}

	digest := pipeline.Run(raw, testNow)

	if len(digest.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(digest.Lines), digest.Lines)
	}
	if digest.Lines[0] != "【USD】21:30 （CPI m/m）（★★★）" {
		t.Errorf("Unexpected line: %s", digest.Lines[0])
	}
}

func TestPipeline_WindowStartBoundary(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	raw := []RawEvent{
		{"currency": "JPY", "date": "2024-05-01", "time": "06:00", "impact": "High", "title": "On the hour"},
		{"currency": "JPY", "date": "2024-05-01", "time": "06:01", "impact": "High", "title": "One past"},
	}

	digest := pipeline.Run(raw, testNow)

	if len(digest.Events) != 1 || digest.Events[0].Title != "One past" {
		t.Errorf("Expected only the 06:01 event, got %+v", digest.Events)
	}
	if digest.Stats.OutOfWindow != 1 {
		t.Errorf("Expected 1 out-of-window record, got %d", digest.Stats.OutOfWindow)
	}
}

func TestPipeline_WindowEndBoundary(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	raw := []RawEvent{
		{"currency": "JPY", "datetime": "2024-05-02T06:00:00+09:00", "impact": "High", "title": "Next start hour"},
		{"currency": "JPY", "datetime": "2024-05-02T06:00:30+09:00", "impact": "High", "title": "Seconds past"},
		{"currency": "JPY", "datetime": "2024-05-02T06:01:00+09:00", "impact": "High", "title": "Next window"},
	}

	digest := pipeline.Run(raw, testNow)

	if len(digest.Events) != 1 || digest.Events[0].Title != "Next start hour" {
		t.Errorf("Expected only the 06:00 event of tomorrow, got %+v", digest.Events)
	}
	if digest.Stats.OutOfWindow != 2 {
		t.Errorf("Expected 2 out-of-window records, got %d", digest.Stats.OutOfWindow)
	}
}

func TestPipeline_MidnightCorrectionIncludesEvent(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, `
window:
  mode: "calendar-day"
`))

	raw := []RawEvent{
		{"currency": "AUD", "date": "2024-04-30", "time": "00:30", "impact": "Medium", "title": "Trade Balance"},
		{"currency": "AUD", "date": "2024-04-30", "time": "07:00", "impact": "Medium", "title": "Yesterday"},
	}

	digest := pipeline.Run(raw, testNow)

	expected := []string{"【AUD】00:30 （Trade Balance）（★★）"}
	if !reflect.DeepEqual(digest.Lines, expected) {
		t.Errorf("Expected lines %q, got %q", expected, digest.Lines)
	}
}

func TestPipeline_SortsByTimeStably(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, ""))

	raw := []RawEvent{
		{"currency": "EUR", "date": "2024-05-01", "time": "18:00", "impact": 2, "title": "B"},
		{"currency": "GBP", "date": "2024-05-01", "time": "17:30", "impact": 2, "title": "A"},
		{"currency": "USD", "date": "2024-05-01", "time": "18:00", "impact": 2, "title": "C"},
	}

	digest := pipeline.Run(raw, testNow)

	var titles []string
	for _, event := range digest.Events {
		titles = append(titles, event.Title)
	}
	if !reflect.DeepEqual(titles, []string{"A", "B", "C"}) {
		t.Errorf("Expected order [A B C], got %v", titles)
	}
}

func TestPipeline_OutputInvariants(t *testing.T) {
	cfg := testConfig(t, "")
	pipeline := NewPipeline(cfg)

	digest := pipeline.Run(sampleFeed(), testNow)

	targets := make(map[string]bool)
	for _, target := range cfg.Filter.TargetInstruments {
		targets[target] = true
	}

	if len(digest.Events) == 0 {
		t.Fatal("Expected sample feed to produce events")
	}
	for _, event := range digest.Events {
		if !targets[event.Instrument] {
			t.Errorf("Event instrument %s outside target set", event.Instrument)
		}
		if int(event.Importance) < cfg.Filter.MinImportance {
			t.Errorf("Event %q importance %d below minimum %d", event.Title, event.Importance, cfg.Filter.MinImportance)
		}
	}
	for _, line := range digest.Lines {
		stars := strings.Count(line, cfg.Render.Star)
		if stars < cfg.Filter.MinImportance {
			t.Errorf("Line %q has %d stars, below minimum", line, stars)
		}
	}
}

func TestPipeline_MinImportanceOne(t *testing.T) {
	pipeline := NewPipeline(testConfig(t, `
filter:
  min_importance: 1
`))

	raw := []RawEvent{
		{"currency": "NZD", "date": "2024-05-01", "time": "07:45", "impact": "Low", "title": "Building Consents"},
		{"currency": "NZD", "date": "2024-05-01", "time": "07:45", "impact": "Non-Economic", "title": "Bank Holiday"},
	}

	digest := pipeline.Run(raw, testNow)

	expected := []string{"【NZD】07:45 （Building Consents）（★）"}
	if !reflect.DeepEqual(digest.Lines, expected) {
		t.Errorf("Expected lines %q, got %q", expected, digest.Lines)
	}
	if digest.Stats.BelowThreshold != 1 {
		t.Errorf("Expected 1 event below threshold, got %d", digest.Stats.BelowThreshold)
	}
}

func sampleFeed() []RawEvent {
	return []RawEvent{
		{"country": "USD", "date": "2024-05-01T08:30:00-04:00", "impact": "High", "title": "ADP Non-Farm Employment Change"},
		{"country": "EUR", "date": "2024-05-01T04:00:00-04:00", "impact": "Medium", "title": "Final Manufacturing PMI"},
		{"country": "CAD", "date": "2024-05-01T08:30:00-04:00", "impact": "High", "title": "Building Permits"},
		{"country": "JPY", "date": "2024-05-01T20:50:00-04:00", "impact": "Low", "title": "Monetary Base"},
		{"country": "GBP", "date": "2024-05-02T04:30:00-04:00", "impact": "High", "title": "Next Week"},
		{"country": "CNY", "date": "2024-05-01", "time": "10:30", "impact": "2", "title": "Manufacturing PMI"},
		{"country": "AUD", "title": "Broken record"},
		{"country": "NZD", "date": "2024-05-01", "time": "07:45", "impact": "High"},
	}
}
