package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abhaya/internal/auth/models"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "abhaya-test")
var sessionID = id.NewSessionID()

func Test_Issue(t *testing.T) {
	token, err := jwtService.Issue(sessionID, "phone-1", models.KindTourist)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "phone-1", claims.Slot)
	assert.Equal(t, "tourist", claims.Kind)
	assert.WithinDuration(t, time.Now().Add(DefaultLifetime), claims.ExpiresAt.Time, time.Minute)

	sid, err := claims.SessionIDOf()
	require.NoError(t, err)
	assert.Equal(t, sessionID, sid)
}

func Test_Validate_InvalidToken(t *testing.T) {
	_, err := jwtService.Validate("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_ExpiredToken(t *testing.T) {
	past := NewJWTService("test-signing-key", "abhaya-test",
		WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }))
	token, err := past.Issue(sessionID, "phone-1", models.KindPolice)
	require.NoError(t, err)

	_, err = jwtService.Validate(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_Validate_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "abhaya-test")
	token, err := other.Issue(sessionID, "phone-1", models.KindTourist)
	require.NoError(t, err)

	_, err = jwtService.Validate(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_WrongIssuer(t *testing.T) {
	other := NewJWTService("test-signing-key", "someone-else")
	token, err := other.Issue(sessionID, "phone-1", models.KindTourist)
	require.NoError(t, err)

	_, err = jwtService.Validate(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_RejectsMissingSlot(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID.String(),
		Kind:      "tourist",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "abhaya-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.Validate(token)
	assert.Equal(t, "invalid token claims", dErrors.MessageOf(err))
}
