package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func newTokenService(t *testing.T, ttlHours int) *TokenService {
	t.Helper()
	return NewTokenService(testSecret, time.Duration(ttlHours)*time.Hour)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	s := newTokenService(t, 1)

	token, err := s.IssueToken("resume_editor")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "resume_editor", claims.Client)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_UniqueTokens(t *testing.T) {
	s := newTokenService(t, 1)
	a, err := s.IssueToken("cli")
	require.NoError(t, err)
	b, err := s.IssueToken("cli")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenService_EmptyClient(t *testing.T) {
	_, err := newTokenService(t, 1).IssueToken("")
	assert.Error(t, err)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, err := newTokenService(t, 1).IssueToken("cli")
	require.NoError(t, err)

	_, err = NewTokenService("another-secret-0123456789", time.Hour).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestTokenService_Expired(t *testing.T) {
	s := newTokenService(t, 1)
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	token, err := s.IssueToken("cli")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestTokenService_Malformed(t *testing.T) {
	s := newTokenService(t, 1)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := s.ValidateToken(token)
		assert.Error(t, err, token)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{Client: "cli", RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTokenService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignIssuer(t *testing.T) {
	claims := &Claims{Client: "cli", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTokenService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}
