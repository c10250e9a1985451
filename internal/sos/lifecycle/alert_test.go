package lifecycle

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "abhaya/pkg/domain"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newAlert() *Alert {
	return New(id.NewAlertID(), id.NewSessionID(), t0)
}

// tickN applies n one-second ticks and returns the time of the last one.
func tickN(a *Alert, n int) time.Time {
	now := t0
	for range n {
		now = now.Add(CountdownStep)
		a.Tick(now)
	}
	return now
}

func TestNewAlertIsArmed(t *testing.T) {
	a := newAlert()
	assert.Equal(t, StateArmed, a.State)
	assert.Equal(t, 5, a.CountdownRemaining)
	assert.Empty(t, a.Code)
	assert.Nil(t, a.DispatchedAt)
	assert.False(t, a.Terminal())
}

func TestCountdownExpiryDispatches(t *testing.T) {
	a := newAlert()

	tickN(a, 4)
	require.Equal(t, StateArmed, a.State)
	require.Equal(t, 1, a.CountdownRemaining)

	last := t0.Add(5 * CountdownStep)
	require.True(t, a.Tick(last))

	assert.Equal(t, StateDispatched, a.State)
	assert.Equal(t, 0, a.CountdownRemaining)
	assert.Equal(t, TriggerCountdown, a.Trigger)
	require.NotNil(t, a.DispatchedAt)
	assert.Equal(t, last, *a.DispatchedAt)
	assert.NotEmpty(t, a.Code)
}

func TestCancelWhileArmed(t *testing.T) {
	a := newAlert()
	tickN(a, 2)
	require.Equal(t, 3, a.CountdownRemaining)

	require.True(t, a.Cancel())

	assert.Equal(t, StateCancelled, a.State)
	assert.Empty(t, a.Code, "a cancelled alert has no identifier")
	assert.Nil(t, a.DispatchedAt)
	assert.True(t, a.Terminal())
}

func TestSilentDispatchFreezesCountdown(t *testing.T) {
	a := newAlert()
	tickN(a, 1)
	require.Equal(t, 4, a.CountdownRemaining)

	now := t0.Add(1500 * time.Millisecond)
	require.True(t, a.SilentDispatch(now))

	assert.Equal(t, StateDispatched, a.State)
	assert.Equal(t, 4, a.CountdownRemaining)
	assert.Equal(t, TriggerSilent, a.Trigger)
	assert.Equal(t, now, *a.DispatchedAt)

	assert.False(t, a.Tick(now.Add(time.Second)), "no countdown after dispatch")
	assert.Equal(t, 4, a.CountdownRemaining)
}

func TestTerminalStatesIgnoreInput(t *testing.T) {
	dispatched := newAlert()
	tickN(dispatched, 5)
	code := dispatched.Code
	at := *dispatched.DispatchedAt

	assert.False(t, dispatched.Cancel(), "cannot cancel after dispatch")
	assert.False(t, dispatched.SilentDispatch(t0.Add(time.Hour)))
	assert.False(t, dispatched.Tick(t0.Add(time.Hour)))
	assert.Equal(t, StateDispatched, dispatched.State)
	assert.Equal(t, code, dispatched.Code, "identifier is generated once")
	assert.Equal(t, at, *dispatched.DispatchedAt)

	cancelled := newAlert()
	cancelled.Cancel()
	assert.False(t, cancelled.Tick(t0.Add(time.Second)))
	assert.False(t, cancelled.SilentDispatch(t0.Add(time.Second)))
	assert.False(t, cancelled.Cancel())
	assert.Equal(t, StateCancelled, cancelled.State)
	assert.Equal(t, 5, cancelled.CountdownRemaining)
}

func TestCountdownNeverGoesNegative(t *testing.T) {
	a := newAlert()
	tickN(a, 20)
	assert.Equal(t, 0, a.CountdownRemaining)
}

func TestCloneIsIndependent(t *testing.T) {
	a := newAlert()
	tickN(a, 5)
	c := a.Clone()
	*c.DispatchedAt = t0.Add(time.Hour)
	c.State = StateArmed
	assert.NotEqual(t, *a.DispatchedAt, *c.DispatchedAt)
	assert.Equal(t, StateDispatched, a.State)
}

func TestNewCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^SOS[0-9A-Z]{6}$`)
	for range 100 {
		assert.Regexp(t, pattern, NewCode())
	}
}

func TestValidTransition(t *testing.T) {
	for _, action := range []Action{ActionTick, ActionSilentDispatch, ActionCancel} {
		assert.True(t, ValidTransition(action, StateArmed), action)
		assert.False(t, ValidTransition(action, StateDispatched), action)
		assert.False(t, ValidTransition(action, StateCancelled), action)
	}
	assert.False(t, ValidTransition("close", StateArmed))
}
