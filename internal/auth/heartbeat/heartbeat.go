// Package heartbeat keeps a session alive while its owner is connected.
package heartbeat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"abhaya/internal/auth/metrics"
	"abhaya/internal/platform/scheduler"
)

// Interval is the production touch period.
const Interval = 30 * time.Second

// Toucher extends a session's activity window.
type Toucher interface {
	Touch(ctx context.Context) error
}

// Heartbeat touches a session on every tick until its context ends.
type Heartbeat struct {
	toucher  Toucher
	interval time.Duration
	tickers  scheduler.TickerFactory
	logger   *slog.Logger
	metrics  *metrics.Metrics
	onTick   func(time.Time)
	stopOn   func(error) bool
}

type Option func(*Heartbeat)

func WithInterval(d time.Duration) Option {
	return func(h *Heartbeat) {
		if d > 0 {
			h.interval = d
		}
	}
}

func WithTickers(f scheduler.TickerFactory) Option {
	return func(h *Heartbeat) {
		if f != nil {
			h.tickers = f
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Heartbeat) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Heartbeat) {
		h.metrics = m
	}
}

// OnTick registers a callback invoked after every touch attempt.
func OnTick(fn func(time.Time)) Option {
	return func(h *Heartbeat) {
		h.onTick = fn
	}
}

// StopOn ends the heartbeat when a touch fails with an error fn accepts,
// such as a session that no longer exists. Other failures are retried on the
// next tick.
func StopOn(fn func(error) bool) Option {
	return func(h *Heartbeat) {
		h.stopOn = fn
	}
}

func New(toucher Toucher, opts ...Option) *Heartbeat {
	h := &Heartbeat{
		toucher:  toucher,
		interval: Interval,
		tickers:  scheduler.Real,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run touches the session on every tick and returns ctx.Err() once ctx is
// done. The ticker is stopped before Run returns. A failed touch is logged
// and the heartbeat keeps going, unless StopOn accepts the error: Run then
// returns it without calling the tick callback.
func (h *Heartbeat) Run(ctx context.Context) error {
	ticker := h.tickers(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C():
			if err := h.toucher.Touch(ctx); err != nil {
				if h.stopOn != nil && h.stopOn(err) {
					h.logger.InfoContext(ctx, "heartbeat stopped", "reason", err)
					return err
				}
				h.logger.WarnContext(ctx, "heartbeat touch failed", "error", err)
			} else {
				h.metrics.IncHeartbeatTick()
			}
			if h.onTick != nil {
				h.onTick(t)
			}
		}
	}
}

// Start runs the heartbeat in its own goroutine. The returned stop function
// cancels it and waits for the goroutine to exit, so no touch happens after
// stop returns. Calling stop more than once is safe.
func (h *Heartbeat) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Run(ctx)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
