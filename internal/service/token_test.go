package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := service.NewTokenService("secret", time.Hour).WithClock(func() time.Time { return now })
	userID := uuid.New()

	token, err := tokens.Issue("ann@example.com", userID)
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.WithinDuration(t, now, claims.IssuedAt.Time, 0)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, 0)
}

func TestTokenRejections(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tokens := service.NewTokenService("secret", time.Hour).WithClock(clock)
	userID := uuid.New()

	valid, err := tokens.Issue("ann@example.com", userID)
	require.NoError(t, err)

	otherSecret, err := service.NewTokenService("other", time.Hour).WithClock(clock).Issue("ann@example.com", userID)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
		UserID:           userID,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		UserID:           userID,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		UserID:           userID,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"tampered":       valid[:len(valid)-2] + "xx",
		"wrong secret":   otherSecret,
		"missing expiry": noExpiry,
		"other alg":      hs512,
		"alg none":       unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			assert.Equal(t, service.ErrTokenInvalid, err)
		})
	}

	t.Run("expired", func(t *testing.T) {
		later := service.NewTokenService("secret", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.Verify(valid)
		assert.Equal(t, service.ErrTokenInvalid, err)
	})
}
