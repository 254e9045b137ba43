package session

import (
	"context"
	"sync"
	"time"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates tickers. Production code uses NewRealTicker.
type TickerFactory func(interval time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.Ticker.
func NewRealTicker(interval time.Duration) Ticker {
	return realTicker{t: time.NewTicker(interval)}
}

// Timer runs a callback on every tick until it is stopped.
// A Timer can be restarted after Stop; each run gets its own goroutine and ticker.
type Timer struct {
	mu       sync.Mutex
	interval time.Duration
	factory  TickerFactory
	cancel   context.CancelFunc
	runs     sync.WaitGroup
}

// NewTimer builds a stopped timer.
func NewTimer(interval time.Duration, factory TickerFactory) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	if factory == nil {
		factory = NewRealTicker
	}
	return &Timer{interval: interval, factory: factory}
}

// Start launches the tick loop. It returns false if the timer is already running.
func (t *Timer) Start(onTick func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := t.factory(t.interval)
	t.cancel = cancel
	t.runs.Add(1)

	go func() {
		defer t.runs.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				onTick()
			}
		}
	}()
	return true
}

// Stop cancels the tick loop and returns true if it was running.
// It does not wait for an in-flight callback, so it is safe to call from inside one.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return false
	}
	t.cancel()
	t.cancel = nil
	return true
}

// Running reports whether a tick loop is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Wait blocks until every tick loop started so far has exited, or ctx ends.
func (t *Timer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
