package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"SignalSentinel/pkg/errors"
	"SignalSentinel/pkg/logger"
)

// Notifier delivers a formatted report somewhere.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// WriterNotifier writes reports to an io.Writer, stdout by default.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier over w. A nil w means os.Stdout.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintln(n.w, text); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// LogNotifier emits reports through the structured logger.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Get()
	}
	return &LogNotifier{log: log.With("component", "notifier")}
}

func (n *LogNotifier) Send(_ context.Context, text string) error {
	n.log.Infow("Analysis report", "report", text)
	return nil
}

// retryBase is the first backoff delay; it doubles on every attempt.
var retryBase = time.Second

// SendWithRetry sends text with exponential backoff retry.
func SendWithRetry(ctx context.Context, n Notifier, text string, maxRetries int, log *logger.Logger) error {
	if log == nil {
		log = logger.Get()
	}
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := n.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * retryBase
		log.Warnw("Report send failed, retrying", "attempt", i+1, "max", maxRetries+1, "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Wrapf(lastErr, "all %d attempts exhausted", maxRetries+1)
}
