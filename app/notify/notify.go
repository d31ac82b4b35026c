package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Sink accepts one rendered message per run.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, text string) error
}

var (
	_ Sink = (*Webhook)(nil)
	_ Sink = (*Writer)(nil)
)

// Writer prints messages instead of posting them. Used for dry runs when no
// webhook is configured.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Name() string {
	return "writer"
}

func (w *Writer) Deliver(_ context.Context, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintln(w.out, text); err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	return nil
}
