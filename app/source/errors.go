package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotList is wrapped by ParseError when a JSON body decodes to something
// other than an array of records.
var ErrNotList = errors.New("unexpected format: not a list")

// Attempt records one failed request against an upstream source.
type Attempt struct {
	Source     string
	URL        string
	StatusCode int    // 0 when no response was received
	Body       string // leading bytes of a non-success response
	Err        error
}

func (a Attempt) String() string {
	if a.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", a.Source, a.StatusCode)
	}
	return fmt.Sprintf("%s: %v", a.Source, a.Err)
}

// FetchError means no source returned a successful response.
type FetchError struct {
	Attempts []Attempt
}

func (e *FetchError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		parts = append(parts, attempt.String())
	}
	return fmt.Sprintf("all sources failed: %s", strings.Join(parts, "; "))
}

// Last returns the final attempt, which is what alerts report.
func (e *FetchError) Last() Attempt {
	if len(e.Attempts) == 0 {
		return Attempt{}
	}
	return e.Attempts[len(e.Attempts)-1]
}

// ParseError means a source answered but its body could not be decoded.
type ParseError struct {
	Source string
	Format string
	Body   string // leading bytes of the body
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s body from %s: %v", e.Format, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func excerpt(data []byte, limit int) string {
	runes := []rune(string(data))
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes)
}
