package calendar

import (
	"time"
)

// GetStartHour returns the window start hour, defaulting to 6
func (w WindowConfig) GetStartHour() int {
	if w.StartHour == nil {
		return 6
	}
	return *w.StartHour
}

// GetTimeout returns the source timeout as time.Duration
func (s SourceConfig) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second // default 30 seconds
	}
	return time.Duration(s.Timeout) * time.Second
}
