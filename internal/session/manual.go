package session

import (
	"sync"
	"time"
)

// ManualTicker only ticks when Tick is called. It drives timers in tests and in offline simulation.
type ManualTicker struct {
	ch       chan time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		ch:     make(chan time.Time),
		stopCh: make(chan struct{}),
	}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Stopped reports whether Stop has been called.
func (m *ManualTicker) Stopped() bool {
	select {
	case <-m.stopCh:
		return true
	default:
		return false
	}
}

// Tick hands one tick to the consumer. It returns false once the ticker is stopped.
func (m *ManualTicker) Tick() bool {
	select {
	case <-m.stopCh:
		return false
	default:
	}
	select {
	case m.ch <- time.Now():
		return true
	case <-m.stopCh:
		return false
	}
}

// ManualClock is a TickerFactory source that remembers every ticker it created.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

// NewTicker satisfies TickerFactory.
func (c *ManualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := NewManualTicker()
	c.tickers = append(c.tickers, t)
	return t
}

// Last returns the most recently created ticker, or nil.
func (c *ManualClock) Last() *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// Count is the number of tickers created so far.
func (c *ManualClock) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}
