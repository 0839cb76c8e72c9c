package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ti, err := newTokenIssuer([]byte("test-secret"), time.Hour, func() time.Time { return now })
	require.NoError(t, err)

	token, id, err := ti.issue(account{userID: "u1", email: "a@b.c", admin: true})
	require.NoError(t, err)

	claims, err := ti.parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.Admin)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ti, err := newTokenIssuer([]byte("test-secret"), time.Hour, func() time.Time { return now })
	require.NoError(t, err)
	token, _, err := ti.issue(account{userID: "u1"})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = ti.parse(token)

	assert.ErrorIs(t, err, errInvalidToken)
}

func TestTokenIssuer_RejectsOtherSecretsAndAlgorithms(t *testing.T) {
	ti, err := newTokenIssuer([]byte("secret-a"), time.Hour, time.Now)
	require.NoError(t, err)
	other, err := newTokenIssuer([]byte("secret-b"), time.Hour, time.Now)
	require.NoError(t, err)

	foreign, _, err := other.issue(account{userID: "u1"})
	require.NoError(t, err)
	_, err = ti.parse(foreign)
	assert.ErrorIs(t, err, errInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ti.parse(unsigned)
	assert.ErrorIs(t, err, errInvalidToken)

	_, err = ti.parse("not.a.token")
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestTokenIssuer_GeneratesSecret(t *testing.T) {
	ti, err := newTokenIssuer(nil, time.Hour, time.Now)
	require.NoError(t, err)
	assert.Len(t, ti.secret, 32)
}

func TestStoreService_RejectsTokenFromAnotherServer(t *testing.T) {
	a := newTestService(t)
	b := newTestService(t)

	session, err := a.Login("user@example.com", "user123")
	require.NoError(t, err)

	_, ok := b.Session(session.Token)
	assert.False(t, ok)
}
