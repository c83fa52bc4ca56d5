package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/inventory/internal/infrastructure/auth"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "inventory-test",
		AccessTokenExpiration: expiration,
	})
}

func newAuthRouter(cfg JWTMiddlewareConfig, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/items/:id", handler)
	return router
}

func authRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_ValidTokenSetsActor(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	userID := uuid.New()
	token, _, err := jwtService.GenerateToken(userID, "manager")
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotRole, loggedActor string
	router := newAuthRouter(DefaultJWTConfig(jwtService), func(c *gin.Context) {
		gotID, _ = GetActorUUID(c)
		gotRole = GetActorRole(c)
		loggedActor = logger.GetActorID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := authRequest(router, BearerPrefix+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "MANAGER", gotRole)
	assert.Equal(t, userID.String(), loggedActor)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	expired, _, err := newTestJWTService(-time.Minute).GenerateToken(uuid.New(), "clerk")
	require.NoError(t, err)
	foreign, _, err := auth.NewJWTService(config.JWTConfig{
		Secret: "another-secret-key-at-least-32-chars", Issuer: "inventory-test", AccessTokenExpiration: time.Minute,
	}).GenerateToken(uuid.New(), "clerk")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "INVALID_TOKEN"},
		{"wrong scheme", "Basic abc", "INVALID_TOKEN"},
		{"empty token", "Bearer ", "INVALID_TOKEN"},
		{"garbage", "Bearer not-a-jwt", "INVALID_TOKEN"},
		{"wrong secret", BearerPrefix + foreign, "INVALID_TOKEN"},
		{"expired", BearerPrefix + expired, "TOKEN_EXPIRED"},
	}
	router := newAuthRouter(DefaultJWTConfig(jwtService), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authRequest(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := newAuthRouter(DefaultJWTConfig(newTestJWTService(time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	var seen error
	cfg := DefaultJWTConfig(newTestJWTService(time.Minute))
	cfg.OnError = func(c *gin.Context, err error) {
		seen = err
		c.AbortWithStatus(http.StatusTeapot)
	}
	router := newAuthRouter(cfg, func(c *gin.Context) { c.Status(http.StatusOK) })

	w := authRequest(router, "")

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.True(t, errors.Is(seen, auth.ErrInvalidToken))
}

func TestGetActorUUID_NotAuthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetActorUUID(c)

	assert.Error(t, err)
	assert.Empty(t, GetActorRole(c))
	assert.Nil(t, GetJWTClaims(c))
}
