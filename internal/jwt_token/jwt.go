package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"abhaya/internal/auth/models"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
)

// DefaultLifetime bounds how long a token may be presented. The session's
// sliding window is enforced separately by the session store.
const DefaultLifetime = 12 * time.Hour

// Claims represents the JWT claims of a session token.
type Claims struct {
	SessionID string `json:"session_id"`
	Slot      string `json:"slot"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 session tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	lifetime   time.Duration
	now        func() time.Time
}

type Option func(*JWTService)

func WithLifetime(d time.Duration) Option {
	return func(s *JWTService) {
		s.lifetime = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewJWTService(signingKey string, issuer string, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		lifetime:   DefaultLifetime,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token binding sessionID to slot.
func (s *JWTService) Issue(sessionID id.SessionID, slot string, kind models.Kind) (string, error) {
	now := s.now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID.String(),
		Slot:      slot,
		Kind:      string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Validate checks the signature, expiry and issuer of tokenString.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Slot == "" || !models.Kind(claims.Kind).IsValid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// SessionIDOf returns the typed session ID carried by claims.
func (c *Claims) SessionIDOf() (id.SessionID, error) {
	sid, err := id.ParseSessionID(c.SessionID)
	if err != nil {
		return id.SessionID{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token claims")
	}
	return sid, nil
}
