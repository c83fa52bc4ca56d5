package auth

import (
	"testing"
	"time"

	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "inventory-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(userID, "manager")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, "inventory-test", claims.Issuer)

	parsed, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestValidateToken_Failures(t *testing.T) {
	svc := newTestJWTService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			Issuer:                "inventory-test",
			AccessTokenExpiration: -time.Hour,
		})
		token, _, err := expired.GenerateToken(uuid.New(), "clerk")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		future := newTestJWTService()
		future.now = func() time.Time { return time.Now().Add(time.Hour) }
		token, _, err := future.GenerateToken(uuid.New(), "clerk")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("different secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-32-characters!",
			Issuer:                "inventory-test",
			AccessTokenExpiration: time.Minute,
		})
		token, _, err := other.GenerateToken(uuid.New(), "admin")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			Issuer:                "someone-else",
			AccessTokenExpiration: time.Minute,
		})
		token, _, err := other.GenerateToken(uuid.New(), "admin")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "inventory-test"},
			UserID:           uuid.NewString(),
			Role:             "ADMIN",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateToken_MissingClaims(t *testing.T) {
	svc := newTestJWTService()
	sign := func(c *Claims) string {
		c.Issuer = "inventory-test"
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.secret)
		require.NoError(t, err)
		return token
	}

	_, err := svc.ValidateToken(sign(&Claims{Role: "CLERK"}))
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.ValidateToken(sign(&Claims{UserID: "not-a-uuid", Role: "CLERK"}))
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = svc.ValidateToken(sign(&Claims{UserID: uuid.NewString()}))
	assert.ErrorIs(t, err, ErrMissingRole)
}
