// Package store keeps dispatched SOS alerts for the police console.
// Cancelled alerts never reach it.
package store

import (
	"context"
	"time"

	"abhaya/internal/sos/lifecycle"
	id "abhaya/pkg/domain"
)

// Record is a dispatched alert as the console sees it.
type Record struct {
	AlertID            id.AlertID         `json:"alert_id"`
	Code               string             `json:"code"`
	SessionID          id.SessionID       `json:"session_id"`
	TouristName        string             `json:"tourist_name,omitempty"`
	Trigger            lifecycle.Trigger  `json:"trigger"`
	CountdownRemaining int                `json:"countdown_remaining"`
	Location           lifecycle.Location `json:"location"`
	NotifiedChannels   []string           `json:"notified_channels"`
	CreatedAt          time.Time          `json:"created_at"`
	DispatchedAt       time.Time          `json:"dispatched_at"`
}

// FromAlert builds the record for a dispatched alert. ok is false for any
// other state.
func FromAlert(a *lifecycle.Alert, channels []string) (Record, bool) {
	if a == nil || a.State != lifecycle.StateDispatched || a.DispatchedAt == nil {
		return Record{}, false
	}
	return Record{
		AlertID:            a.ID,
		Code:               a.Code,
		SessionID:          a.SessionID,
		TouristName:        a.TouristName,
		Trigger:            a.Trigger,
		CountdownRemaining: a.CountdownRemaining,
		Location:           a.Location,
		NotifiedChannels:   append([]string(nil), channels...),
		CreatedAt:          a.CreatedAt,
		DispatchedAt:       *a.DispatchedAt,
	}, true
}

// RecordStore persists dispatch records. FindByID returns sentinel.ErrNotFound
// for unknown alerts; Save returns sentinel.ErrConflict for a duplicate ID.
type RecordStore interface {
	Save(ctx context.Context, rec Record) error
	FindByID(ctx context.Context, alertID id.AlertID) (*Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// DefaultListLimit caps ListRecent when callers pass a non-positive limit.
const DefaultListLimit = 50
