package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	calls  atomic.Int32
	cancel context.CancelFunc
	stopAt int32
	// failUntil makes the first n calls fail; zero fails every call.
	failUntil int32
}

func (p *countingProcessor) ProcessMessage(context.Context) error {
	n := p.calls.Add(1)
	if n == p.stopAt {
		p.cancel()
	}
	if p.failUntil == 0 || n <= p.failUntil {
		return errors.New("bad message")
	}
	return nil
}

func run(t *testing.T, w *Worker, ctx context.Context) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func Test_RunContinuesPastErrorsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &countingProcessor{cancel: cancel, stopAt: 3}
	w := New(Config{Name: "test-worker", Processor: p, ErrorBackoff: time.Millisecond})

	run(t, w, ctx)
	assert.Equal(t, int32(3), p.calls.Load())
}

func Test_RunBacksOffOnConsecutiveFailures(t *testing.T) {
	cases := []struct {
		name      string
		failUntil int32
		stopAt    int32
		expected  []time.Duration
	}{
		{
			name:     "doubles up to the cap",
			stopAt:   7,
			expected: []time.Duration{10, 20, 40, 50, 50, 50},
		},
		{
			name:      "success resets the streak",
			failUntil: 3,
			stopAt:    6,
			expected:  []time.Duration{10, 20},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p := &countingProcessor{cancel: cancel, stopAt: tt.stopAt, failUntil: tt.failUntil}
			w := New(Config{Name: "test-worker", Processor: p, ErrorBackoff: 10, MaxBackoff: 50})

			var waits []time.Duration
			w.wait = func(ctx context.Context, d time.Duration) bool {
				waits = append(waits, d)
				return ctx.Err() == nil
			}
			run(t, w, ctx)
			assert.Equal(t, tt.expected, waits)
		})
	}
}

func Test_NewDefaults(t *testing.T) {
	w := New(Config{Name: "w"})
	assert.Equal(t, DefaultErrorBackoff, w.backoff)
	assert.Equal(t, DefaultMaxBackoff, w.maxBackoff)
}
