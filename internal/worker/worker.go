package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultErrorBackoff = 100 * time.Millisecond
	DefaultMaxBackoff   = 5 * time.Second
)

type Config struct {
	Name      string
	Processor Processor
	// ErrorBackoff is the first pause after consecutive failures. It doubles
	// per further failure up to MaxBackoff and resets on success.
	ErrorBackoff time.Duration
	MaxBackoff   time.Duration
}

type Processor interface {
	ProcessMessage(ctx context.Context) error
}

type Worker struct {
	name       string
	processor  Processor
	backoff    time.Duration
	maxBackoff time.Duration
	wait       func(ctx context.Context, d time.Duration) bool
}

func New(cfg Config) *Worker {
	w := &Worker{
		name:       cfg.Name,
		processor:  cfg.Processor,
		backoff:    cfg.ErrorBackoff,
		maxBackoff: cfg.MaxBackoff,
		wait:       sleep,
	}
	if w.backoff <= 0 {
		w.backoff = DefaultErrorBackoff
	}
	if w.maxBackoff < w.backoff {
		w.maxBackoff = max(DefaultMaxBackoff, w.backoff)
	}
	return w
}

// Run drives the processor until ctx is cancelled. Processing errors are
// logged and the loop moves on to the next message. A single bad message
// costs no pause; a failing source (broker down) is polled with backoff.
func (w *Worker) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Worker started...", "worker", w.name)
	failures := 0
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Worker stopped...", "worker", w.name)
			return
		default:
		}

		err := w.processor.ProcessMessage(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			failures = 0
			continue
		}
		failures++
		slog.ErrorContext(ctx, "Error processing message", "worker", w.name, "error", err, "consecutive_failures", failures)
		if failures < 2 {
			continue
		}
		if !w.wait(ctx, w.delay(failures)) {
			slog.InfoContext(ctx, "Worker stopped...", "worker", w.name)
			return
		}
	}
}

// delay is the pause after the given number of consecutive failures (>= 2).
func (w *Worker) delay(failures int) time.Duration {
	d := w.backoff
	for i := 2; i < failures && d < w.maxBackoff; i++ {
		d *= 2
	}
	return min(d, w.maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
