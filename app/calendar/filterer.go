package calendar

type Filterer struct {
	targets       map[string]struct{}
	minImportance Importance
}

func NewFilterer(cfg *Config) *Filterer {
	return &Filterer{
		targets:       targetSet(cfg.Filter.TargetInstruments, cfg.Filter.IdentityScheme),
		minImportance: Importance(cfg.Filter.MinImportance),
	}
}

func (f *Filterer) Run(events []Event) []Event {
	kept := make([]Event, 0, len(events))
	for _, event := range events {
		if f.Keep(event) {
			kept = append(kept, event)
		}
	}
	return kept
}

func (f *Filterer) Keep(event Event) bool {
	if _, ok := f.targets[event.Instrument]; !ok {
		return false
	}
	return event.Importance >= f.minImportance
}
