package models

import (
	"encoding/json"
	"time"

	id "abhaya/pkg/domain"
)

// TTL is the inactivity window after which a session is treated as absent.
const TTL = 30 * time.Minute

// Kind distinguishes the two front-ends that can hold a session.
type Kind string

const (
	KindTourist Kind = "tourist"
	KindPolice  Kind = "police"
)

func (k Kind) IsValid() bool {
	return k == KindTourist || k == KindPolice
}

// Session is the single resident authenticated context of a device.
// Principal is opaque to the store; the service layer decodes it.
type Session struct {
	ID           id.SessionID
	Kind         Kind
	Principal    json.RawMessage
	Device       string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// IsExpired reports whether s has been inactive for longer than TTL at now.
// A session idle for exactly TTL is still valid.
func IsExpired(s *Session, now time.Time) bool {
	return now.Sub(s.LastActiveAt) > TTL
}

// TouristProfile is the principal of a tourist session.
type TouristProfile struct {
	Name             string `json:"name"`
	Language         string `json:"language,omitempty"`
	DocumentHash     string `json:"document_hash"`
	VerificationHash string `json:"verification_hash"`
	Itinerary        string `json:"itinerary,omitempty"`
	EmergencyContact string `json:"emergency_contact"`
}

// OfficerProfile is the principal of a police session. It never carries the
// officer's password.
type OfficerProfile struct {
	BadgeID string `json:"badge_id"`
	Name    string `json:"name"`
	Station string `json:"station,omitempty"`
}

// SessionView is the API representation of a session.
type SessionView struct {
	SessionID    id.SessionID    `json:"session_id"`
	Kind         Kind            `json:"kind"`
	Principal    json.RawMessage `json:"principal"`
	Device       string          `json:"device,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActiveAt time.Time       `json:"last_active_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// View projects s for API responses.
func (s *Session) View() SessionView {
	return SessionView{
		SessionID:    s.ID,
		Kind:         s.Kind,
		Principal:    s.Principal,
		Device:       s.Device,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.LastActiveAt.Add(TTL),
	}
}

// TouristLoginRequest carries the onboarding form.
type TouristLoginRequest struct {
	Name             string `json:"name"`
	Language         string `json:"language"`
	Document         string `json:"document"`
	Itinerary        string `json:"itinerary"`
	EmergencyContact string `json:"emergency_contact"`
}

// PoliceLoginRequest carries console credentials.
type PoliceLoginRequest struct {
	BadgeID  string `json:"badge_id"`
	Password string `json:"password"`
}

// LoginResult is returned by both login flows.
type LoginResult struct {
	Token   string      `json:"token"`
	Session SessionView `json:"session"`
}

// AuthContext is the authenticated caller of a request.
type AuthContext struct {
	Slot    string
	Session *Session
}
