// Package service runs SOS alerts for tourist sessions and serves the
// dispatched ones to the police console.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"abhaya/internal/platform/scheduler"
	"abhaya/internal/sos/countdown"
	"abhaya/internal/sos/lifecycle"
	"abhaya/internal/sos/metrics"
	"abhaya/internal/sos/publisher"
	"abhaya/internal/sos/store"
	id "abhaya/pkg/domain"
)

// RecordStore keeps dispatched alerts.
type RecordStore interface {
	Save(ctx context.Context, rec store.Record) error
	FindByID(ctx context.Context, alertID id.AlertID) (*store.Record, error)
	ListRecent(ctx context.Context, limit int) ([]store.Record, error)
}

// Notifier delivers a dispatch to one downstream channel.
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, ev publisher.DispatchEvent) error
}

const (
	defaultNotifyTimeout = 5 * time.Second
	// DefaultRetention matches the session TTL: a dispatched alert nobody
	// closed outlives any session that could still see it.
	DefaultRetention = 30 * time.Minute
)

// entry is an alert the service still tracks: armed, or terminal and not
// yet closed by the tourist.
type entry struct {
	runner    *countdown.Runner
	sessionID id.SessionID
	// terminalAt is set once the alert dispatched; zero while armed.
	terminalAt time.Time
	// sessionEnded marks an armed alert whose session is gone. It is
	// forgotten as soon as it dispatches.
	sessionEnded bool
}

// Service owns every open alert. Each armed alert has one countdown runner;
// Shutdown stops them all.
type Service struct {
	records   RecordStore
	notifiers []Notifier
	tickers   scheduler.TickerFactory
	now       func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	notifyTimeout time.Duration
	retention     time.Duration

	mu        sync.Mutex
	alerts    map[id.AlertID]*entry
	bySession map[id.SessionID]id.AlertID
	closed    bool

	runCtx    context.Context
	cancelRun context.CancelFunc
	wg        sync.WaitGroup
}

type Option func(*Service)

func WithNotifiers(n ...Notifier) Option {
	return func(s *Service) {
		s.notifiers = append(s.notifiers, n...)
	}
}

// WithTickers sets the tick source for countdowns.
func WithTickers(f scheduler.TickerFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.tickers = f
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithRetention sets how long a dispatched alert stays visible to its
// tourist when it is never closed.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

func New(records RecordStore, opts ...Option) *Service {
	runCtx, cancel := context.WithCancel(context.Background())
	s := &Service{
		records:       records,
		tickers:       scheduler.Real,
		now:           time.Now,
		logger:        slog.Default(),
		tracer:        otel.Tracer("abhaya/sos"),
		notifyTimeout: defaultNotifyTimeout,
		retention:     DefaultRetention,
		alerts:        make(map[id.AlertID]*entry),
		bySession:     make(map[id.SessionID]id.AlertID),
		runCtx:        runCtx,
		cancelRun:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shutdown stops every countdown and waits for the runners to exit, or for
// ctx to end. Alerts still armed are abandoned without dispatch.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancelRun()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for alertID, e := range s.alerts {
		if snap := e.runner.Snapshot(); snap.State == lifecycle.StateArmed {
			s.metrics.DecArmed()
			s.logger.Warn("armed alert abandoned at shutdown", "alert_id", alertID.String())
		}
	}
	return nil
}
