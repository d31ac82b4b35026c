package calendar

type eventKey struct {
	instrument string
	occursAt   int64
	title      string
}

// Dedupe drops events whose (instrument, time, title) was already seen,
// keeping the first occurrence and the original order. It returns the number
// of dropped duplicates alongside.
func Dedupe(events []Event) ([]Event, int) {
	seen := make(map[eventKey]struct{}, len(events))
	unique := make([]Event, 0, len(events))

	for _, event := range events {
		key := eventKey{
			instrument: event.Instrument,
			occursAt:   event.OccursAt.UnixNano(),
			title:      event.Title,
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, event)
	}

	return unique, len(events) - len(unique)
}
