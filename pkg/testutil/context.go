package testutil

import (
	"net/http"
	"time"

	"abhaya/internal/auth/models"
	"abhaya/internal/platform/middleware"
	id "abhaya/pkg/domain"
)

// WithSession attaches an authenticated session of kind in slot to the
// request, as RequireSession would. It returns the request and the session.
func WithSession(req *http.Request, kind models.Kind, slot string) (*http.Request, *models.Session) {
	now := time.Now()
	sess := &models.Session{
		ID:           id.NewSessionID(),
		Kind:         kind,
		Principal:    []byte(`{}`),
		CreatedAt:    now,
		LastActiveAt: now,
	}
	ctx := middleware.WithAuth(req.Context(), &models.AuthContext{Slot: slot, Session: sess})
	return req.WithContext(ctx), sess
}
