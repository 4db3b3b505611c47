//go:build unit

package jwt_test

import (
	"testing"
	"time"

	pkgjwt "coachbook/internal/pkg/jwt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func issue(t *testing.T, userID uuid.UUID, role string, expiresAt time.Time, method jwtlib.SigningMethod, key any) string {
	t.Helper()
	token := jwtlib.NewWithClaims(method, pkgjwt.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestParseToken(t *testing.T) {
	userID := uuid.New()

	t.Run("valid token round-trips claims", func(t *testing.T) {
		signed := issue(t, userID, "student", time.Now().Add(time.Hour), jwtlib.SigningMethodHS256, []byte(secret))

		claims, err := pkgjwt.ParseToken(secret, signed)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "student", claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		signed := issue(t, userID, "student", time.Now().Add(-time.Hour), jwtlib.SigningMethodHS256, []byte(secret))

		_, err := pkgjwt.ParseToken(secret, signed)
		assert.ErrorIs(t, err, pkgjwt.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := issue(t, userID, "student", time.Now().Add(time.Hour), jwtlib.SigningMethodHS256, []byte("other-secret"))

		_, err := pkgjwt.ParseToken(secret, signed)
		assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		signed := issue(t, uuid.Nil, "student", time.Now().Add(time.Hour), jwtlib.SigningMethodHS256, []byte(secret))

		_, err := pkgjwt.ParseToken(secret, signed)
		assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := pkgjwt.ParseToken(secret, "not.a.token")
		assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
	})
}
