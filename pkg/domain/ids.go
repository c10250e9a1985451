// Package domain holds typed identifiers shared across modules.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "abhaya/pkg/domain-errors"
)

// SessionID identifies one login session.
type SessionID uuid.UUID

// AlertID identifies one SOS alert request.
type AlertID uuid.UUID

// ReportID identifies one hazard report.
type ReportID uuid.UUID

// NewSessionID returns a random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewAlertID returns a random alert ID.
func NewAlertID() AlertID { return AlertID(uuid.New()) }

func NewReportID() ReportID { return ReportID(uuid.New()) }

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) String() string   { return uuid.UUID(id).String() }
func (id AlertID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) String() string  { return uuid.UUID(id).String() }

// MarshalText lets typed IDs serialize as plain UUID strings.
func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id AlertID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *AlertID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ReportID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ReportID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseSessionID parses s and rejects empty, malformed and nil UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseAlertID parses s and rejects empty, malformed and nil UUIDs.
func ParseAlertID(s string) (AlertID, error) {
	u, err := parseUUID(s, "alert_id")
	return AlertID(u), err
}

func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID(s, "report_id")
	return ReportID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
