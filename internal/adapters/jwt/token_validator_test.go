package token_adapter

import (
	"context"
	"testing"
	"time"

	"appraisal-portal/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key-with-enough-entropy"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwtCustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(ttl time.Duration) jwtCustomClaims {
	now := time.Now()
	return jwtCustomClaims{
		UserID: uuid.New(),
		Email:  "appraiser@example.com",
		Role:   domain.RoleAppraiser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "auth-service",
		},
	}
}

func TestNewTokenValidator_EmptyKey(t *testing.T) {
	_, err := NewTokenValidator("")
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	v, err := NewTokenValidator(testKey)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		c := validClaims(time.Hour)
		claims, err := v.ValidateToken(ctx, sign(t, jwt.SigningMethodHS256, []byte(testKey), c))
		require.NoError(t, err)
		assert.Equal(t, c.UserID, claims.UserID)
		assert.Equal(t, domain.RoleAppraiser, claims.Role)
		assert.Equal(t, "appraiser@example.com", claims.Email)
	})

	t.Run("expired", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(testKey), validClaims(-time.Minute))
		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("wrong key", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte("other-key"), validClaims(time.Hour))
		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS512, []byte(testKey), validClaims(time.Hour))
		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("missing role", func(t *testing.T) {
		c := validClaims(time.Hour)
		c.Role = ""
		_, err := v.ValidateToken(ctx, sign(t, jwt.SigningMethodHS256, []byte(testKey), c))
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})
}
