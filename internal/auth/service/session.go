package service

import (
	"context"
	"errors"

	"abhaya/internal/auth/models"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/audit"
	"abhaya/pkg/platform/sentinel"
)

// Current returns the live session of slot if it is the one identified by
// sessionID. Reading it extends its activity window.
func (s *Service) Current(ctx context.Context, slot string, sessionID id.SessionID) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, slot)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.endSession(ctx, sessionID)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired or not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read session")
	}
	if sess.ID != sessionID {
		s.endSession(ctx, sessionID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session replaced by a newer login")
	}
	return sess, nil
}

// Authenticate resolves a bearer token to its slot and live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.AuthContext, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	sessionID, err := claims.SessionIDOf()
	if err != nil {
		return nil, err
	}
	sess, err := s.Current(ctx, claims.Slot, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.AuthContext{Slot: claims.Slot, Session: sess}, nil
}

// Touch records explicit activity on the session of slot.
func (s *Service) Touch(ctx context.Context, slot string, sessionID id.SessionID) (*models.Session, error) {
	return s.Current(ctx, slot, sessionID)
}

// Logout clears slot. Logging out of an empty slot succeeds.
func (s *Service) Logout(ctx context.Context, slot string, sessionID id.SessionID) error {
	if err := s.sessions.Clear(ctx, slot); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear session")
	}
	s.endSession(ctx, sessionID)
	audit.Log(ctx, s.logger, audit.EventLogout,
		"session_id", sessionID.String(),
		"slot", slot,
	)
	return nil
}
