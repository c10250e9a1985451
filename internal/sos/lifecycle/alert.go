// Package lifecycle models an SOS alert request: a short countdown that ends
// in dispatch unless the tourist cancels first.
package lifecycle

import (
	"math/rand/v2"
	"strings"
	"time"

	id "abhaya/pkg/domain"
)

const (
	// CountdownStart is the number of seconds before an armed alert dispatches.
	CountdownStart = 5
	// CountdownStep is the wall-clock length of one countdown tick.
	CountdownStep = time.Second
)

type State string

const (
	StateArmed      State = "armed"
	StateDispatched State = "dispatched"
	StateCancelled  State = "cancelled"
)

// Trigger records how an alert reached dispatch.
type Trigger string

const (
	TriggerCountdown Trigger = "countdown"
	TriggerSilent    Trigger = "silent"
)

// Location is where the tourist was when the alert was raised.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// Alert is one SOS request.
type Alert struct {
	ID                 id.AlertID   `json:"alert_id"`
	SessionID          id.SessionID `json:"session_id"`
	TouristName        string       `json:"tourist_name,omitempty"`
	State              State        `json:"state"`
	CountdownRemaining int          `json:"countdown_remaining"`
	CreatedAt          time.Time    `json:"created_at"`
	DispatchedAt       *time.Time   `json:"dispatched_at,omitempty"`
	Code               string       `json:"code,omitempty"`
	Trigger            Trigger      `json:"trigger,omitempty"`
	Location           Location     `json:"location"`
}

// New returns an armed alert with a full countdown.
func New(alertID id.AlertID, sessionID id.SessionID, now time.Time) *Alert {
	return &Alert{
		ID:                 alertID,
		SessionID:          sessionID,
		State:              StateArmed,
		CountdownRemaining: CountdownStart,
		CreatedAt:          now,
	}
}

// Tick advances the countdown by one step and dispatches when it reaches
// zero. It returns false, changing nothing, unless the alert is armed.
func (a *Alert) Tick(now time.Time) bool {
	if !ValidTransition(ActionTick, a.State) {
		return false
	}
	if a.CountdownRemaining > 0 {
		a.CountdownRemaining--
	}
	if a.CountdownRemaining == 0 {
		a.dispatch(now, TriggerCountdown)
	}
	return true
}

// SilentDispatch dispatches immediately. The countdown keeps whatever value
// it had.
func (a *Alert) SilentDispatch(now time.Time) bool {
	if !ValidTransition(ActionSilentDispatch, a.State) {
		return false
	}
	a.dispatch(now, TriggerSilent)
	return true
}

// Cancel abandons an armed alert.
func (a *Alert) Cancel() bool {
	if !ValidTransition(ActionCancel, a.State) {
		return false
	}
	a.State = StateCancelled
	return true
}

// Terminal reports whether the alert can no longer change.
func (a *Alert) Terminal() bool {
	return a.State == StateDispatched || a.State == StateCancelled
}

// Clone returns a deep copy.
func (a *Alert) Clone() *Alert {
	c := *a
	if a.DispatchedAt != nil {
		t := *a.DispatchedAt
		c.DispatchedAt = &t
	}
	return &c
}

func (a *Alert) dispatch(now time.Time, trigger Trigger) {
	a.State = StateDispatched
	a.DispatchedAt = &now
	a.Trigger = trigger
	a.Code = NewCode()
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCode returns a display identifier: "SOS" and six base-36 characters.
// Codes are for humans reading a console and are not guaranteed unique.
func NewCode() string {
	var b strings.Builder
	b.Grow(9)
	b.WriteString("SOS")
	for range 6 {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}
