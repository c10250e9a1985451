// Package scheduler abstracts interval timers so countdowns and heartbeats
// can be driven by real time in production and by injected ticks in tests.
package scheduler

import (
	"sync"
	"time"
)

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

// Real is the production TickerFactory.
func Real(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// ManualTicker is driven by Tick. Deliveries are unbuffered, so a successful
// Tick means the consumer has received the tick.
type ManualTicker struct {
	ch       chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

// Tick delivers t and blocks until it is received. It returns false, without
// delivering, once the ticker has been stopped.
func (m *ManualTicker) Tick(t time.Time) bool {
	select {
	case <-m.stopped:
		return false
	default:
	}
	select {
	case m.ch <- t:
		return true
	case <-m.stopped:
		return false
	}
}

// Stopped reports whether Stop has been called.
func (m *ManualTicker) Stopped() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

// ManualClock hands out ManualTickers and records them in creation order.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*ManualTicker
	created chan *ManualTicker
}

func NewManualClock() *ManualClock {
	return &ManualClock{created: make(chan *ManualTicker, 64)}
}

// Factory satisfies TickerFactory.
func (c *ManualClock) Factory(time.Duration) Ticker {
	t := NewManualTicker()
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	c.created <- t
	return t
}

// Next blocks until the next ticker is created or timeout elapses.
func (c *ManualClock) Next(timeout time.Duration) (*ManualTicker, bool) {
	select {
	case t := <-c.created:
		return t, true
	case <-time.After(timeout):
		return nil, false
	}
}

// NewBufferedTicker returns a ManualTicker whose channel already holds ticks,
// so a consumer finds them ready on its first select.
func NewBufferedTicker(ticks ...time.Time) *ManualTicker {
	m := &ManualTicker{
		ch:      make(chan time.Time, len(ticks)),
		stopped: make(chan struct{}),
	}
	for _, t := range ticks {
		m.ch <- t
	}
	return m
}
