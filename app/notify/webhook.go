package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	errorBodyExcerpt = 200
)

type Option func(*Webhook)

// WithHTTPClient replaces the default client, e.g. to share transport settings.
func WithHTTPClient(client *http.Client) Option {
	return func(w *Webhook) { w.client = client }
}

func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) { w.client.Timeout = d }
}

// Webhook posts messages to a Slack-compatible incoming webhook as
// {"text": ...}. A message is sent once; failures are returned, not retried.
type Webhook struct {
	client *http.Client
	url    string
}

func NewWebhook(url string, opts ...Option) *Webhook {
	w := &Webhook{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Webhook) Name() string {
	return "webhook"
}

type webhookPayload struct {
	Text string `json:"text"`
}

func (w *Webhook) Deliver(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookPayload{Text: text})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyExcerpt))
	return fmt.Errorf("webhook: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(excerpt))
}
