package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedManager(at time.Time) *TokenManager {
	tm := NewTokenManager("test-secret", 24*time.Hour)
	tm.now = func() time.Time { return at }
	return tm
}

func TestTokenManager_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	tm := fixedManager(now)

	tok, exp, err := tm.Issue("a@lab.test", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)

	s, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Session{Email: "a@lab.test", Role: RoleAdmin}, s)
}

func TestTokenManager_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	tok, _, err := fixedManager(issued).Issue("a@lab.test", RoleStaff)
	require.NoError(t, err)

	_, err = fixedManager(issued.Add(25 * time.Hour)).Verify(tok)
	assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tok, _, err := NewTokenManager("other", time.Hour).Issue("a@lab.test", RoleStaff)
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenManager_WrongAlgorithm(t *testing.T) {
	claims := &Claims{
		Email: "a@lab.test",
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tm := NewTokenManager("test-secret", time.Hour)
	for name, tok := range map[string]string{"HS512": hs512, "none": none, "garbage": "not.a.jwt"} {
		_, err := tm.Verify(tok)
		assert.ErrorIs(t, err, ErrUnauthorized, name)
	}
}

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := VerifyPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("not-a-bcrypt-hash", "x")
	assert.Error(t, err)
}
