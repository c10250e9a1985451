package service

import (
	"context"
	"log/slog"

	"abhaya/internal/auth/heartbeat"
	"abhaya/internal/auth/metrics"
	"abhaya/internal/auth/models"
	"abhaya/internal/auth/officers"
	jwttoken "abhaya/internal/jwt_token"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
)

// SessionStore holds one session per device slot.
type SessionStore interface {
	Save(ctx context.Context, slot string, sess *models.Session) error
	Get(ctx context.Context, slot string) (*models.Session, error)
	Peek(ctx context.Context, slot string) (*models.Session, error)
	Clear(ctx context.Context, slot string) error
}

// TokenService issues and validates session tokens.
type TokenService interface {
	Issue(sessionID id.SessionID, slot string, kind models.Kind) (string, error)
	Validate(token string) (*jwttoken.Claims, error)
}

// OfficerDirectory authenticates police console users.
type OfficerDirectory interface {
	Authenticate(badgeID, password string) (officers.Officer, error)
}

// Service owns login, session lookup and logout for both front-ends.
type Service struct {
	sessions      SessionStore
	tokens        TokenService
	officers      OfficerDirectory
	logger        *slog.Logger
	metrics       *metrics.Metrics
	heartbeatOpts []heartbeat.Option
	sessionEnded  []func(ctx context.Context, sessionID id.SessionID)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithHeartbeatOptions configures heartbeats built by Heartbeat.
func WithHeartbeatOptions(opts ...heartbeat.Option) Option {
	return func(s *Service) {
		s.heartbeatOpts = append(s.heartbeatOpts, opts...)
	}
}

// WithSessionEndHook registers fn to run when a session is logged out,
// replaced by a newer login in its slot, or found expired. fn may run more
// than once for the same session.
func WithSessionEndHook(fn func(ctx context.Context, sessionID id.SessionID)) Option {
	return func(s *Service) {
		if fn != nil {
			s.sessionEnded = append(s.sessionEnded, fn)
		}
	}
}

func New(sessions SessionStore, tokens TokenService, directory OfficerDirectory, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		tokens:   tokens,
		officers: directory,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Heartbeat returns a heartbeat that keeps session sessionID of slot alive.
// It stops once that session is gone: logged out, expired or replaced by a
// newer login. extra options apply after the service-wide ones.
func (s *Service) Heartbeat(slot string, sessionID id.SessionID, extra ...heartbeat.Option) *heartbeat.Heartbeat {
	opts := []heartbeat.Option{
		heartbeat.WithLogger(s.logger),
		heartbeat.WithMetrics(s.metrics),
		heartbeat.StopOn(func(err error) bool {
			return dErrors.HasCode(err, dErrors.CodeUnauthorized)
		}),
	}
	opts = append(opts, s.heartbeatOpts...)
	opts = append(opts, extra...)
	return heartbeat.New(sessionToucher{svc: s, slot: slot, sessionID: sessionID}, opts...)
}

// sessionToucher extends the session through Current, so a heartbeat never
// keeps a different session of the same slot alive.
type sessionToucher struct {
	svc       *Service
	slot      string
	sessionID id.SessionID
}

func (t sessionToucher) Touch(ctx context.Context) error {
	_, err := t.svc.Current(ctx, t.slot, t.sessionID)
	return err
}

func (s *Service) endSession(ctx context.Context, sessionID id.SessionID) {
	for _, fn := range s.sessionEnded {
		fn(ctx, sessionID)
	}
}
