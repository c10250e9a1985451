package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome is one recorded upstream call: true for success.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func record(b *Breaker, calls ...outcome) {
	for _, c := range calls {
		if c {
			b.RecordSuccess()
		} else {
			b.RecordFailure()
		}
	}
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		successes int
		calls     []outcome
		wantOpen  bool
	}{
		{name: "fresh breaker is closed", failures: 3, successes: 1},
		{name: "failures below threshold keep it closed", failures: 3, successes: 1, calls: []outcome{fail, fail}},
		{name: "threshold of consecutive failures opens it", failures: 3, successes: 1, calls: []outcome{fail, fail, fail}, wantOpen: true},
		{name: "a success resets the failure streak", failures: 3, successes: 1, calls: []outcome{fail, fail, ok, fail, fail}},
		{name: "trial successes close it", failures: 1, successes: 2, calls: []outcome{fail, ok, ok}},
		{name: "a single trial success is not enough", failures: 1, successes: 2, calls: []outcome{fail, ok}, wantOpen: true},
		{name: "a failed trial restarts the success streak", failures: 1, successes: 2, calls: []outcome{fail, ok, fail, ok}, wantOpen: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("weather", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))
			record(b, tt.calls...)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestBreakerReportsChanges(t *testing.T) {
	b := New("news", WithFailureThreshold(2), WithSuccessThreshold(1))
	assert.Equal(t, "news", b.Name())

	fallback, change := b.RecordFailure()
	assert.False(t, fallback)
	assert.Equal(t, Change{}, change)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback)
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())

	fallback, change = b.RecordFailure()
	assert.True(t, fallback, "an open breaker keeps serving the fallback")
	assert.False(t, change.Opened, "already open")

	primary, change := b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerAllowsOneProbePerCooldown(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	b := New("videos",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithCooldown(30*time.Second),
		WithClock(func() time.Time { return now }),
	)

	require.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow(), "inside the cooldown")

	now = now.Add(29 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "cooldown elapsed")
	assert.False(t, b.Allow(), "trial call already taken")

	b.RecordFailure()
	now = now.Add(30 * time.Second)
	assert.True(t, b.Allow(), "next trial call after another cooldown")

	b.RecordSuccess()
	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
}
