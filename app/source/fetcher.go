package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lysyi3m/calendar-comb/app/calendar"
)

const bodyExcerptLimit = 200

type Result struct {
	Events []calendar.RawEvent
	Source string // name of the source that answered, joined with "+" in merge mode
}

// Fetcher queries the configured sources in priority order. In "first" mode
// the first source that answers with a decodable body wins; in "merge" mode
// every successful source contributes and duplicates are left to the
// pipeline.
type Fetcher struct {
	sources    []calendar.SourceConfig
	mode       string
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(cfg *calendar.Config, httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		sources:    cfg.Sources,
		mode:       cfg.FetchMode,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Run returns *FetchError when no source could be reached, or *ParseError
// when at least one answered but nothing could be decoded.
func (f *Fetcher) Run(ctx context.Context) (*Result, error) {
	var (
		attempts   []Attempt
		parseErr   *ParseError
		events     []calendar.RawEvent
		answeredBy []string
	)

	for _, src := range f.sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch, err := f.fetchSource(ctx, src)
		if err != nil {
			var pe *ParseError
			var attempt *attemptError
			switch {
			case errors.As(err, &pe):
				parseErr = pe
			case errors.As(err, &attempt):
				attempts = append(attempts, attempt.Attempt)
			default:
				attempts = append(attempts, Attempt{Source: src.Name, URL: src.URL, Err: err})
			}
			slog.Warn("Source failed", "source", src.Name, "url", src.URL, "error", err)
			continue
		}

		slog.Debug("Source fetched", "source", src.Name, "records", len(batch))
		events = append(events, batch...)
		answeredBy = append(answeredBy, src.Name)

		if f.mode != calendar.FetchModeMerge {
			break
		}
	}

	if len(answeredBy) == 0 {
		if parseErr != nil {
			return nil, parseErr
		}
		return nil, &FetchError{Attempts: attempts}
	}

	return &Result{
		Events: events,
		Source: strings.Join(answeredBy, "+"),
	}, nil
}

// attemptError carries transport and status failures out of fetchSource.
type attemptError struct {
	Attempt
}

func (e *attemptError) Error() string {
	return e.Attempt.String()
}

func (f *Fetcher) fetchSource(ctx context.Context, src calendar.SourceConfig) ([]calendar.RawEvent, error) {
	decoder, err := NewDecoder(src.Format)
	if err != nil {
		return nil, err
	}

	data, err := f.fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	events, err := decoder.Run(data)
	if err != nil {
		return nil, &ParseError{
			Source: src.Name,
			Format: src.Format,
			Body:   excerpt(data, bodyExcerptLimit),
			Err:    err,
		}
	}
	return events, nil
}

func (f *Fetcher) fetch(ctx context.Context, src calendar.SourceConfig) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, src.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &attemptError{Attempt{Source: src.Name, URL: src.URL, Err: err}}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &attemptError{Attempt{Source: src.Name, URL: src.URL, Err: fmt.Errorf("failed to read response body: %w", err)}}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &attemptError{Attempt{
			Source:     src.Name,
			URL:        src.URL,
			StatusCode: resp.StatusCode,
			Body:       excerpt(data, bodyExcerptLimit),
			Err:        fmt.Errorf("HTTP error: %s", resp.Status),
		}}
	}

	return data, nil
}
