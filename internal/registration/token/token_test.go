package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New("test-signing-key", "test-issuer", "test-audience")
	require.NoError(t, err)
	return svc
}

func Test_New_RequiresKey(t *testing.T) {
	_, err := New("", "iss", "aud")
	require.Error(t, err)
}

func Test_IssueAndValidate(t *testing.T) {
	svc := newService(t)
	sessionID := id.NewSessionID()

	token, expiresAt, err := svc.Issue(sessionID, "Chrome on Android", 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "Chrome on Android", claims.Device)
	assert.NotEmpty(t, claims.ID)

	got, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func Test_Validate_Expired(t *testing.T) {
	svc := newService(t)
	token, _, err := svc.Issue(id.NewSessionID(), "", -time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func Test_Validate_Rejects(t *testing.T) {
	svc := newService(t)
	good, _, err := svc.Issue(id.NewSessionID(), "", time.Hour)
	require.NoError(t, err)

	other, err := New("another-key", "test-issuer", "test-audience")
	require.NoError(t, err)
	foreign, _, err := other.Issue(id.NewSessionID(), "", time.Hour)
	require.NoError(t, err)

	wrongAud, err := New("test-signing-key", "test-issuer", "someone-else")
	require.NoError(t, err)
	misaddressed, _, err := wrongAud.Issue(id.NewSessionID(), "", time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SessionID: id.NewSessionID().String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":         "invalid-token-string",
		"tampered":        good + "x",
		"wrong key":       foreign,
		"wrong audience":  misaddressed,
		"unsigned (none)": noneAlg,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateSessionToken(tok)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}

func Test_ValidateSessionToken_MalformedSessionID(t *testing.T) {
	svc := newService(t)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  []string{"test-audience"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
