// Package countdown drives one armed alert through its countdown.
package countdown

import (
	"context"
	"sync"
	"time"

	"abhaya/internal/platform/scheduler"
	"abhaya/internal/sos/lifecycle"
)

type commandKind int

const (
	commandCancel commandKind = iota
	commandSilent
)

type command struct {
	kind  commandKind
	reply chan bool
}

// Runner owns an alert while it is armed. All mutation happens on the
// goroutine executing Run; other goroutines read through Snapshot.
type Runner struct {
	mu    sync.Mutex
	alert *lifecycle.Alert

	tickers      scheduler.TickerFactory
	now          func() time.Time
	onTransition func(*lifecycle.Alert)

	commands chan command
	done     chan struct{}
}

type Option func(*Runner)

func WithTickers(f scheduler.TickerFactory) Option {
	return func(r *Runner) {
		if f != nil {
			r.tickers = f
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// OnTransition registers fn to receive a snapshot whenever the alert reaches
// a terminal state. fn runs on the Run goroutine before Run returns.
func OnTransition(fn func(*lifecycle.Alert)) Option {
	return func(r *Runner) {
		r.onTransition = fn
	}
}

func New(alert *lifecycle.Alert, opts ...Option) *Runner {
	r := &Runner{
		alert:    alert,
		tickers:  scheduler.Real,
		now:      time.Now,
		commands: make(chan command, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks the countdown every lifecycle.CountdownStep until the alert is
// terminal or ctx ends. The ticker is stopped before Run returns.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	ticker := r.tickers(lifecycle.CountdownStep)
	defer ticker.Stop()

	if r.terminal() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C():
			if r.apply(func(a *lifecycle.Alert) bool { return a.Tick(t) }) {
				return
			}
		case cmd := <-r.commands:
			// A tick that is already due wins over the command, so an alert
			// whose countdown has reached zero cannot be cancelled.
			select {
			case t := <-ticker.C():
				if r.apply(func(a *lifecycle.Alert) bool { return a.Tick(t) }) {
					cmd.reply <- false
					return
				}
			default:
			}

			var applied bool
			finished := r.apply(func(a *lifecycle.Alert) bool {
				switch cmd.kind {
				case commandCancel:
					applied = a.Cancel()
				case commandSilent:
					applied = a.SilentDispatch(r.now())
				}
				return applied
			})
			cmd.reply <- applied
			if finished {
				return
			}
		}
	}
}

// apply mutates the alert under lock and reports whether it became terminal,
// in which case the transition callback has run.
func (r *Runner) apply(fn func(*lifecycle.Alert) bool) bool {
	r.mu.Lock()
	fn(r.alert)
	terminal := r.alert.Terminal()
	var snapshot *lifecycle.Alert
	if terminal {
		snapshot = r.alert.Clone()
	}
	r.mu.Unlock()

	if terminal && r.onTransition != nil {
		r.onTransition(snapshot)
	}
	return terminal
}

func (r *Runner) terminal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alert.Terminal()
}

// Cancel asks the runner to cancel the alert. It returns false when the
// alert was no longer armed.
func (r *Runner) Cancel(ctx context.Context) (bool, error) {
	return r.send(ctx, commandCancel)
}

// SilentDispatch asks the runner to dispatch without waiting for the
// countdown. It returns false when the alert was no longer armed.
func (r *Runner) SilentDispatch(ctx context.Context) (bool, error) {
	return r.send(ctx, commandSilent)
}

func (r *Runner) send(ctx context.Context, kind commandKind) (bool, error) {
	cmd := command{kind: kind, reply: make(chan bool, 1)}
	select {
	case r.commands <- cmd:
	case <-r.done:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case applied := <-cmd.reply:
		return applied, nil
	case <-r.done:
		// Run may have replied just before exiting.
		select {
		case applied := <-cmd.reply:
			return applied, nil
		default:
			return false, nil
		}
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Snapshot returns a copy of the alert.
func (r *Runner) Snapshot() *lifecycle.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alert.Clone()
}

// Done is closed when Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
