package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/infrastructure/auth"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/erp/inventory/internal/interfaces/http/handler"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestEngineConfig(pingErr error) (EngineConfig, *auth.JWTService) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "engine-test-secret-at-least-32-chars",
		Issuer:                "inventory-test",
		AccessTokenExpiration: time.Hour,
	})
	return EngineConfig{
		HTTP:       config.HTTPConfig{MaxBodySize: 1 << 20},
		JWTService: jwtService,
		Tracing:    middleware.TracingConfig{Enabled: false},
		Health:     handler.NewHealthHandler(stubPinger{err: pingErr}, "test"),
		Handlers: Handlers{
			Barcodes: handler.NewBarcodeHandler(inventoryapp.NewBarcodeService(nil)),
		},
	}, jwtService
}

func bearer(t *testing.T, jwtService *auth.JWTService) string {
	t.Helper()
	token, _, err := jwtService.GenerateToken(uuid.New(), "clerk")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestNewEngine_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		cfg, _ := newTestEngineConfig(nil)
		engine := NewEngine(cfg)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("database down", func(t *testing.T) {
		cfg, _ := newTestEngineConfig(errors.New("connection refused"))
		engine := NewEngine(cfg)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestNewEngine_UnknownRoute(t *testing.T) {
	cfg, _ := newTestEngineConfig(nil)
	engine := NewEngine(cfg)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRouteNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestNewEngine_APIRequiresToken(t *testing.T) {
	cfg, jwtService := newTestEngineConfig(nil)
	engine := NewEngine(cfg)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/barcodes/formats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/barcodes/formats", nil)
	req.Header.Set(middleware.AuthHeaderKey, bearer(t, jwtService))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data, "EAN_13")
}

func TestNewEngine_RateLimit(t *testing.T) {
	cfg, jwtService := newTestEngineConfig(nil)
	cfg.RateLimiter = middleware.NewRateLimiter(1, time.Minute)
	engine := NewEngine(cfg)
	token := bearer(t, jwtService)

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/barcodes/formats", nil)
		req.Header.Set(middleware.AuthHeaderKey, token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestInventoryRoutes_SkipsMissingHandlers(t *testing.T) {
	assert.Empty(t, InventoryRoutes(Handlers{}))

	groups := InventoryRoutes(Handlers{Barcodes: handler.NewBarcodeHandler(nil)})
	require.Len(t, groups, 1)
	assert.Equal(t, "/barcodes", groups[0].Prefix())
	assert.Equal(t, 4, groups[0].RouteCount())
}
