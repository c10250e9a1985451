package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SessionStore,TokenService,OfficerDirectory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"abhaya/internal/auth/heartbeat"
	"abhaya/internal/auth/models"
	"abhaya/internal/auth/officers"
	"abhaya/internal/auth/service/mocks"
	jwttoken "abhaya/internal/jwt_token"
	"abhaya/internal/platform/scheduler"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/sentinel"
	"abhaya/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	sessions *mocks.MockSessionStore
	tokens   *mocks.MockTokenService
	officers *mocks.MockOfficerDirectory
	svc      *Service
	ctx      context.Context
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessions = mocks.NewMockSessionStore(s.ctrl)
	s.tokens = mocks.NewMockTokenService(s.ctrl)
	s.officers = mocks.NewMockOfficerDirectory(s.ctrl)
	s.svc = New(s.sessions, s.tokens, s.officers,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validTourist() models.TouristLoginRequest {
	return models.TouristLoginRequest{
		Name:             "  Asha Verma ",
		Language:         "HI",
		Document:         "P1234567",
		Itinerary:        "Delhi, Agra",
		EmergencyContact: "+91 98100 00000",
	}
}

// =============================================================================
// Tourist login
// =============================================================================

func (s *ServiceSuite) TestLoginTourist() {
	s.Run("saves a tourist session and issues a token", func() {
		var saved *models.Session
		s.sessions.EXPECT().Save(s.ctx, "phone-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, sess *models.Session) error {
				saved = sess
				return nil
			})
		s.tokens.EXPECT().Issue(gomock.Any(), "phone-1", models.KindTourist).Return("tok", nil)

		res, err := s.svc.LoginTourist(s.ctx, "phone-1", "Chrome on Android", validTourist())
		s.Require().NoError(err)

		s.Equal("tok", res.Token)
		s.Equal(saved.ID, res.Session.SessionID)
		s.Equal(models.KindTourist, saved.Kind)
		s.Equal(s.now, saved.CreatedAt)
		s.Equal(s.now, saved.LastActiveAt)
		s.Equal(s.now.Add(models.TTL), res.Session.ExpiresAt)

		var profile models.TouristProfile
		s.Require().NoError(json.Unmarshal(saved.Principal, &profile))
		s.Equal("Asha Verma", profile.Name)
		s.Equal("hi", profile.Language)
		s.Len(profile.DocumentHash, 64)
		s.NotContains(string(saved.Principal), "P1234567", "raw document number is never stored")
		s.True(strings.HasPrefix(profile.VerificationHash, "0x"))
		s.Len(profile.VerificationHash, 18)
	})

	s.Run("rejects a missing emergency contact", func() {
		req := validTourist()
		req.EmergencyContact = " "
		_, err := s.svc.LoginTourist(s.ctx, "phone-1", "", req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an invalid device slot", func() {
		_, err := s.svc.LoginTourist(s.ctx, "../etc", "", validTourist())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("store failure is internal", func() {
		s.sessions.EXPECT().Save(gomock.Any(), "phone-1", gomock.Any()).Return(errors.New("redis down"))
		_, err := s.svc.LoginTourist(s.ctx, "phone-1", "", validTourist())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// =============================================================================
// Police login
// =============================================================================

func (s *ServiceSuite) TestLoginPolice() {
	s.Run("authenticated officer gets a police session", func() {
		s.officers.EXPECT().Authenticate("DL-1042", "pw").Return(officers.Officer{
			BadgeID: "DL-1042", Name: "Inspector Rao", Station: "Saket",
		}, nil)
		var saved *models.Session
		s.sessions.EXPECT().Save(gomock.Any(), "console", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, sess *models.Session) error {
				saved = sess
				return nil
			})
		s.tokens.EXPECT().Issue(gomock.Any(), "console", models.KindPolice).Return("tok", nil)

		res, err := s.svc.LoginPolice(s.ctx, "console", "", models.PoliceLoginRequest{BadgeID: " DL-1042 ", Password: "pw"})
		s.Require().NoError(err)
		s.Equal(models.KindPolice, res.Session.Kind)
		s.JSONEq(`{"badge_id":"DL-1042","name":"Inspector Rao","station":"Saket"}`, string(saved.Principal))
	})

	s.Run("bad credentials are unauthorized and nothing is saved", func() {
		s.officers.EXPECT().Authenticate("DL-1042", "nope").
			Return(officers.Officer{}, dErrors.New(dErrors.CodeUnauthorized, "invalid badge id or password"))

		_, err := s.svc.LoginPolice(s.ctx, "console", "", models.PoliceLoginRequest{BadgeID: "DL-1042", Password: "nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("missing password is invalid input", func() {
		_, err := s.svc.LoginPolice(s.ctx, "console", "", models.PoliceLoginRequest{BadgeID: "DL-1042"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Session lookup
// =============================================================================

func (s *ServiceSuite) TestCurrent() {
	sessionID := id.NewSessionID()
	live := &models.Session{ID: sessionID, Kind: models.KindTourist, CreatedAt: s.now, LastActiveAt: s.now}

	s.Run("returns the live session", func() {
		s.sessions.EXPECT().Get(s.ctx, "phone-1").Return(live, nil)
		got, err := s.svc.Current(s.ctx, "phone-1", sessionID)
		s.Require().NoError(err)
		s.Equal(live, got)
	})

	s.Run("expired slot is unauthorized", func() {
		s.sessions.EXPECT().Get(s.ctx, "phone-1").Return(nil, sentinel.ErrNotFound)
		_, err := s.svc.Current(s.ctx, "phone-1", sessionID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("a newer login in the slot invalidates the old session id", func() {
		s.sessions.EXPECT().Get(s.ctx, "phone-1").Return(live, nil)
		_, err := s.svc.Current(s.ctx, "phone-1", id.NewSessionID())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("store failure is internal", func() {
		s.sessions.EXPECT().Get(s.ctx, "phone-1").Return(nil, errors.New("boom"))
		_, err := s.svc.Current(s.ctx, "phone-1", sessionID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestAuthenticate() {
	sessionID := id.NewSessionID()
	live := &models.Session{ID: sessionID, Kind: models.KindPolice}

	s.Run("valid token resolves slot and session", func() {
		s.tokens.EXPECT().Validate("tok").Return(&jwttoken.Claims{
			SessionID: sessionID.String(), Slot: "console", Kind: "police",
		}, nil)
		s.sessions.EXPECT().Get(s.ctx, "console").Return(live, nil)

		auth, err := s.svc.Authenticate(s.ctx, "tok")
		s.Require().NoError(err)
		s.Equal("console", auth.Slot)
		s.Equal(live, auth.Session)
	})

	s.Run("invalid token never reaches the store", func() {
		s.tokens.EXPECT().Validate("bad").Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		_, err := s.svc.Authenticate(s.ctx, "bad")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestLogout() {
	s.Run("clears the slot", func() {
		s.sessions.EXPECT().Clear(s.ctx, "phone-1").Return(nil)
		s.NoError(s.svc.Logout(s.ctx, "phone-1", id.NewSessionID()))
	})

	s.Run("store failure is internal", func() {
		s.sessions.EXPECT().Clear(s.ctx, "phone-1").Return(errors.New("boom"))
		err := s.svc.Logout(s.ctx, "phone-1", id.NewSessionID())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestHeartbeatTouchesTheSession() {
	clock := scheduler.NewManualClock()
	sessionID := id.NewSessionID()
	s.sessions.EXPECT().Get(gomock.Any(), "phone-1").
		Return(&models.Session{ID: sessionID, Kind: models.KindTourist}, nil).Times(2)

	stop := s.svc.Heartbeat("phone-1", sessionID, heartbeat.WithTickers(clock.Factory)).Start(s.ctx)
	ticker, ok := clock.Next(time.Second)
	s.Require().True(ok)

	s.True(ticker.Tick(s.now.Add(heartbeat.Interval)))
	s.True(ticker.Tick(s.now.Add(2 * heartbeat.Interval)))
	stop()
	s.False(ticker.Tick(s.now.Add(3*heartbeat.Interval)), "no touch after stop")
}

func (s *ServiceSuite) TestHeartbeatEndsWhenTheSessionIsGone() {
	cases := map[string]func(){
		"logged out": func() {
			s.sessions.EXPECT().Get(gomock.Any(), "phone-1").Return(nil, sentinel.ErrNotFound)
		},
		"replaced by a newer login": func() {
			s.sessions.EXPECT().Get(gomock.Any(), "phone-1").
				Return(&models.Session{ID: id.NewSessionID(), Kind: models.KindTourist}, nil)
		},
	}
	for name, arrange := range cases {
		s.Run(name, func() {
			arrange()
			clock := scheduler.NewManualClock()
			done := make(chan error, 1)
			go func() {
				done <- s.svc.Heartbeat("phone-1", id.NewSessionID(), heartbeat.WithTickers(clock.Factory)).Run(s.ctx)
			}()
			ticker, ok := clock.Next(time.Second)
			s.Require().True(ok)

			s.True(ticker.Tick(s.now.Add(heartbeat.Interval)))
			err := <-done
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
			s.False(ticker.Tick(s.now.Add(2*heartbeat.Interval)), "the newer session is not kept alive")
		})
	}
}

// =============================================================================
// Session end hook
// =============================================================================

func (s *ServiceSuite) TestSessionEndHook() {
	var ended []id.SessionID
	svc := New(s.sessions, s.tokens, s.officers,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSessionEndHook(func(_ context.Context, sessionID id.SessionID) {
			ended = append(ended, sessionID)
		}))
	reset := func() { ended = nil }

	s.Run("logout reports the session", func() {
		reset()
		sessionID := id.NewSessionID()
		s.sessions.EXPECT().Clear(s.ctx, "phone-1").Return(nil)
		s.Require().NoError(svc.Logout(s.ctx, "phone-1", sessionID))
		s.Equal([]id.SessionID{sessionID}, ended)
	})

	s.Run("a failed logout reports nothing", func() {
		reset()
		s.sessions.EXPECT().Clear(s.ctx, "phone-1").Return(errors.New("boom"))
		s.Error(svc.Logout(s.ctx, "phone-1", id.NewSessionID()))
		s.Empty(ended)
	})

	s.Run("an expired lookup reports the caller's session", func() {
		reset()
		sessionID := id.NewSessionID()
		s.sessions.EXPECT().Get(s.ctx, "phone-1").Return(nil, sentinel.ErrNotFound)
		_, err := svc.Current(s.ctx, "phone-1", sessionID)
		s.Error(err)
		s.Equal([]id.SessionID{sessionID}, ended)
	})

	s.Run("a newer login reports the session it replaced", func() {
		reset()
		previous := &models.Session{ID: id.NewSessionID(), Kind: models.KindTourist}
		s.sessions.EXPECT().Peek(s.ctx, "phone-1").Return(previous, nil)
		s.sessions.EXPECT().Save(s.ctx, "phone-1", gomock.Any()).Return(nil)
		s.tokens.EXPECT().Issue(gomock.Any(), "phone-1", models.KindTourist).Return("tok", nil)

		res, err := svc.LoginTourist(s.ctx, "phone-1", "", validTourist())
		s.Require().NoError(err)
		s.NotEqual(previous.ID, res.Session.SessionID)
		s.Equal([]id.SessionID{previous.ID}, ended)
	})

	s.Run("a first login reports nothing", func() {
		reset()
		s.sessions.EXPECT().Peek(s.ctx, "phone-1").Return(nil, sentinel.ErrNotFound)
		s.sessions.EXPECT().Save(s.ctx, "phone-1", gomock.Any()).Return(nil)
		s.tokens.EXPECT().Issue(gomock.Any(), "phone-1", models.KindTourist).Return("tok", nil)

		_, err := svc.LoginTourist(s.ctx, "phone-1", "", validTourist())
		s.Require().NoError(err)
		s.Empty(ended)
	})

	s.Run("a login that fails to save keeps the previous session", func() {
		reset()
		s.sessions.EXPECT().Peek(s.ctx, "phone-1").
			Return(&models.Session{ID: id.NewSessionID(), Kind: models.KindTourist}, nil)
		s.sessions.EXPECT().Save(s.ctx, "phone-1", gomock.Any()).Return(errors.New("redis down"))

		_, err := svc.LoginTourist(s.ctx, "phone-1", "", validTourist())
		s.Error(err)
		s.Empty(ended)
	})
}

func (s *ServiceSuite) TestValidateSlot() {
	for _, ok := range []string{"default", "phone-1", "A.b_c-9", strings.Repeat("x", 64)} {
		s.NoError(ValidateSlot(ok), ok)
	}
	for _, bad := range []string{"", "a b", "x/y", strings.Repeat("x", 65), "é"} {
		s.Error(ValidateSlot(bad), bad)
	}
}
