package router

import (
	"net/http"
	"time"

	"github.com/erp/inventory/internal/infrastructure/auth"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/erp/inventory/internal/interfaces/http/handler"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Items        *handler.ItemHandler
	Transactions *handler.TransactionHandler
	Locations    *handler.LocationHandler
	Suppliers    *handler.SupplierHandler
	Barcodes     *handler.BarcodeHandler
}

// EngineConfig holds everything NewEngine wires together
type EngineConfig struct {
	HTTP          config.HTTPConfig
	Logger        *zap.Logger
	JWTService    *auth.JWTService
	MeterProvider *telemetry.MeterProvider
	Tracing       middleware.TracingConfig
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.RateLimiter
	Health      *handler.HealthHandler
	Handlers    Handlers
}

// NewEngine builds the gin engine with the full middleware stack.
//
// Engine-wide, in order: request ID, panic recovery, request logging,
// security headers, CORS, body limit, tracing and HTTP metrics.
// API routes additionally pass JWT authentication, span enrichment
// with the actor and the per-actor rate limit.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		Enabled:       cfg.MeterProvider != nil,
	}))

	if cfg.Health != nil {
		engine.GET("/health", cfg.Health.Health)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	r := NewRouter(engine, WithAPIVersion("v1"))
	jwtConfig := middleware.DefaultJWTConfig(cfg.JWTService)
	jwtConfig.Logger = log
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	r.Use(middleware.TracingAttributeInjector())
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	for _, group := range InventoryRoutes(cfg.Handlers) {
		r.Register(group)
	}
	r.Setup()

	return engine
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	cors.MaxAge = 12 * time.Hour
	return cors
}

// InventoryRoutes returns the route groups of the inventory API.
// Groups whose handler is nil are skipped.
func InventoryRoutes(h Handlers) []*DomainGroup {
	groups := make([]*DomainGroup, 0, 5)

	if items := h.Items; items != nil {
		g := NewDomainGroup("/items")
		g.POST("", items.Create)
		g.GET("", items.ListByLocation)
		g.GET("/by-barcode/:code", items.GetByBarcode)
		g.GET("/:id", items.GetByID)
		g.PUT("/:id", items.Update)
		g.POST("/:id/adjust", items.Adjust)
		g.POST("/:id/deactivate", items.Deactivate)
		g.POST("/:id/reserve", items.Reserve)
		g.POST("/:id/release", items.Release)
		g.GET("/:id/reorder-point", items.ReorderPoint)
		groups = append(groups, g)
	}

	if txs := h.Transactions; txs != nil {
		g := NewDomainGroup("/transactions")
		g.POST("", txs.Record)
		g.GET("", txs.List)
		g.POST("/validate", txs.Validate)
		g.POST("/bulk", txs.Bulk)
		g.GET("/by-number/:number", txs.GetByNumber)
		g.GET("/:id", txs.GetByID)
		g.PUT("/:id", txs.Modify)
		g.POST("/:id/approve", txs.Approve)
		g.POST("/:id/process", txs.Process)
		g.POST("/:id/cancel", txs.Cancel)
		g.POST("/:id/retry", txs.Retry)
		groups = append(groups, g)
	}

	if locations := h.Locations; locations != nil {
		g := NewDomainGroup("/locations")
		g.POST("", locations.Create)
		g.GET("/tree", locations.Tree)
		g.POST("/validate-parent", locations.ValidateParent)
		g.GET("/:id", locations.GetByID)
		g.PUT("/:id", locations.Update)
		g.DELETE("/:id", locations.Delete)
		g.PUT("/:id/parent", locations.Move)
		g.GET("/:id/ancestors", locations.Ancestors)
		g.GET("/:id/descendants", locations.Descendants)
		g.GET("/:id/capacity", locations.Capacity)
		g.GET("/:id/items", locations.Items)
		groups = append(groups, g)
	}

	if suppliers := h.Suppliers; suppliers != nil {
		g := NewDomainGroup("/suppliers")
		g.POST("", suppliers.Create)
		g.GET("/by-code/:code", suppliers.GetByCode)
		g.GET("/:id", suppliers.GetByID)
		g.PUT("/:id", suppliers.Update)
		g.POST("/:id/deactivate", suppliers.Deactivate)
		groups = append(groups, g)
	}

	if barcodes := h.Barcodes; barcodes != nil {
		g := NewDomainGroup("/barcodes")
		g.GET("/formats", barcodes.Formats)
		g.POST("/validate", barcodes.Validate)
		g.POST("/suggest", barcodes.Suggest)
		g.POST("/scan-quality", barcodes.ScanQuality)
		groups = append(groups, g)
	}

	return groups
}
