package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"abhaya/internal/auth/models"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/audit"
	"abhaya/pkg/requestcontext"
)

const (
	maxFieldLength  = 256
	maxSlotLength   = 64
	defaultLanguage = "en"
)

// LoginTourist starts a tourist session in slot, replacing any session the
// slot held before.
func (s *Service) LoginTourist(ctx context.Context, slot, device string, req models.TouristLoginRequest) (*models.LoginResult, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	req = normalizeTourist(req)
	if err := validateTourist(req); err != nil {
		s.metrics.IncLogin(string(models.KindTourist), "invalid")
		return nil, err
	}

	sessionID := id.NewSessionID()
	documentHash := sha256Hex(req.Document)
	profile := models.TouristProfile{
		Name:             req.Name,
		Language:         req.Language,
		DocumentHash:     documentHash,
		VerificationHash: verificationHash(documentHash, sessionID),
		Itinerary:        req.Itinerary,
		EmergencyContact: req.EmergencyContact,
	}

	result, err := s.startSession(ctx, slot, device, models.KindTourist, sessionID, profile)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, s.logger, audit.EventTouristLogin,
		"session_id", sessionID.String(),
		"slot", slot,
		"device", device,
	)
	return result, nil
}

// LoginPolice authenticates an officer and starts a police session in slot.
func (s *Service) LoginPolice(ctx context.Context, slot, device string, req models.PoliceLoginRequest) (*models.LoginResult, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	badge := strings.TrimSpace(req.BadgeID)
	if badge == "" || req.Password == "" {
		s.metrics.IncLogin(string(models.KindPolice), "invalid")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "badge_id and password are required")
	}

	officer, err := s.officers.Authenticate(badge, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.metrics.IncLogin(string(models.KindPolice), "rejected")
			audit.Log(ctx, s.logger, audit.EventAuthFailed,
				"kind", string(models.KindPolice),
				"badge_id", badge,
				"slot", slot,
			)
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to authenticate officer")
	}

	sessionID := id.NewSessionID()
	result, err := s.startSession(ctx, slot, device, models.KindPolice, sessionID, officer.Profile())
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, s.logger, audit.EventPoliceLogin,
		"session_id", sessionID.String(),
		"badge_id", officer.BadgeID,
		"slot", slot,
	)
	return result, nil
}

func (s *Service) startSession(ctx context.Context, slot, device string, kind models.Kind, sessionID id.SessionID, principal any) (*models.LoginResult, error) {
	raw, err := json.Marshal(principal)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode principal")
	}

	var replaced *models.Session
	if len(s.sessionEnded) > 0 {
		// A failed read only means there is nothing to replace.
		replaced, _ = s.sessions.Peek(ctx, slot)
	}

	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:           sessionID,
		Kind:         kind,
		Principal:    raw,
		Device:       device,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.sessions.Save(ctx, slot, sess); err != nil {
		s.metrics.IncLogin(string(kind), "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	if replaced != nil && replaced.ID != sessionID {
		s.endSession(ctx, replaced.ID)
	}

	token, err := s.tokens.Issue(sessionID, slot, kind)
	if err != nil {
		s.metrics.IncLogin(string(kind), "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncLogin(string(kind), "success")
	return &models.LoginResult{Token: token, Session: sess.View()}, nil
}

// ValidateSlot accepts 1-64 characters from [A-Za-z0-9._-].
func ValidateSlot(slot string) error {
	if slot == "" || len(slot) > maxSlotLength {
		return dErrors.New(dErrors.CodeInvalidInput, "device id must be 1-64 characters")
	}
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "device id contains invalid characters")
		}
	}
	return nil
}

func normalizeTourist(req models.TouristLoginRequest) models.TouristLoginRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if req.Language == "" {
		req.Language = defaultLanguage
	}
	req.Document = strings.TrimSpace(req.Document)
	req.Itinerary = strings.TrimSpace(req.Itinerary)
	req.EmergencyContact = strings.TrimSpace(req.EmergencyContact)
	return req
}

func validateTourist(req models.TouristLoginRequest) error {
	switch {
	case req.Name == "":
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	case req.Document == "":
		return dErrors.New(dErrors.CodeInvalidInput, "document is required")
	case req.EmergencyContact == "":
		return dErrors.New(dErrors.CodeInvalidInput, "emergency_contact is required")
	}
	for field, v := range map[string]string{
		"name":              req.Name,
		"document":          req.Document,
		"itinerary":         req.Itinerary,
		"emergency_contact": req.EmergencyContact,
	} {
		if len(v) > maxFieldLength {
			return dErrors.New(dErrors.CodeInvalidInput, field+" is too long")
		}
	}
	return nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// verificationHash is the "0x"-prefixed digital ID shown on the tourist card.
func verificationHash(documentHash string, sessionID id.SessionID) string {
	return "0x" + sha256Hex(documentHash + ":" + sessionID.String())[:16]
}
