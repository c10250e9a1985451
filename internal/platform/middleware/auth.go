package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"abhaya/internal/auth/models"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/httputil"
)

// SessionAuthenticator resolves a bearer token to a live session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthContext, error)
}

type contextKeyAuth struct{}

// GetAuth returns the authenticated caller, or nil outside RequireSession.
func GetAuth(ctx context.Context) *models.AuthContext {
	auth, _ := ctx.Value(contextKeyAuth{}).(*models.AuthContext)
	return auth
}

// WithAuth injects an authenticated caller. Useful for handler tests.
func WithAuth(ctx context.Context, auth *models.AuthContext) context.Context {
	return context.WithValue(ctx, contextKeyAuth{}, auth)
}

// RequireSession rejects requests without a bearer token bound to the live
// session of its slot. Successful authentication extends the session.
func RequireSession(authenticator SessionAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			auth, err := authenticator.Authenticate(ctx, strings.TrimSpace(token))
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.WarnContext(ctx, "unauthorized access - invalid session",
						"error", err,
						"request_id", requestID,
					)
				} else {
					logger.ErrorContext(ctx, "session lookup failed",
						"error", err,
						"request_id", requestID,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(ctx, auth)))
		})
	}
}

// RequireKind allows only sessions of kind. It must run after RequireSession.
func RequireKind(kind models.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := GetAuth(r.Context())
			if auth == nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if auth.Session.Kind != kind {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "this endpoint requires a "+string(kind)+" session"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
