// Package publisher tells downstream responders that an alert was dispatched.
package publisher

import (
	"context"
	"time"

	"abhaya/internal/sos/lifecycle"
)

// DispatchEvent is the payload sent for every dispatched alert.
type DispatchEvent struct {
	AlertID      string             `json:"alert_id"`
	Code         string             `json:"code"`
	SessionID    string             `json:"session_id"`
	TouristName  string             `json:"tourist_name,omitempty"`
	Trigger      lifecycle.Trigger  `json:"trigger"`
	Location     lifecycle.Location `json:"location"`
	DispatchedAt time.Time          `json:"dispatched_at"`
}

// EventFromAlert builds the event for a dispatched alert.
func EventFromAlert(a *lifecycle.Alert) DispatchEvent {
	ev := DispatchEvent{
		AlertID:     a.ID.String(),
		Code:        a.Code,
		SessionID:   a.SessionID.String(),
		TouristName: a.TouristName,
		Trigger:     a.Trigger,
		Location:    a.Location,
	}
	if a.DispatchedAt != nil {
		ev.DispatchedAt = a.DispatchedAt.UTC()
	}
	return ev
}

// Notifier delivers dispatch events to one channel. Channel names end up in
// the alert record's notified channels.
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, ev DispatchEvent) error
}
