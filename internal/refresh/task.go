// Package refresh runs a function on a fixed, adjustable interval.
package refresh

import (
	"context"
	"sync"
	"time"
)

// Task calls fn every interval until stopped. Changing the interval resets
// the existing ticker; it never starts a second loop.
type Task struct {
	fn func(context.Context)

	mu       sync.Mutex
	interval time.Duration
	ticker   *time.Ticker
	cancel   context.CancelFunc
	done     chan struct{}
}

// New returns a stopped task.
func New(interval time.Duration, fn func(context.Context)) *Task {
	return &Task{fn: fn, interval: interval}
}

// Start runs fn immediately and then on every tick. It returns at once;
// calling Start on a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		return
	}

	ctx, t.cancel = context.WithCancel(ctx)
	t.ticker = time.NewTicker(t.interval)
	t.done = make(chan struct{})
	go t.loop(ctx, t.ticker, t.done)
}

func (t *Task) loop(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	t.fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fn(ctx)
		}
	}
}

// Interval returns the current period.
func (t *Task) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// SetInterval changes the period. A running ticker is reset in place.
func (t *Task) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if d == t.interval {
		return
	}
	t.interval = d
	if t.ticker != nil {
		t.ticker.Reset(d)
	}
}

// Stop cancels the loop and waits for an in-progress fn to return.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done, t.ticker = nil, nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the loop exits, for example after its context ends.
func (t *Task) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done != nil {
		<-done
	}
}
