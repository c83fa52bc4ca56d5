package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/inventory/internal/infrastructure/auth"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTActorIDKey   = "jwt_actor_id"
	JWTActorRoleKey = "jwt_actor_role"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
		},
	}
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config.
// A valid bearer token becomes the acting user of the request: its user ID and
// approval role are stored in the gin context and attached to the request logger.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		setActor(c, claims)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("actor_id", claims.UserID),
				zap.String("actor_role", claims.Role),
			)
		}

		c.Next()
	}
}

func setActor(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTActorIDKey, claims.UserID)
	c.Set(JWTActorRoleKey, claims.Role)

	ctx := c.Request.Context()
	ctx, reqLogger := logger.WithActor(ctx, logger.FromContext(ctx), claims.UserID, claims.Role)
	c.Request = c.Request.WithContext(ctx)
	if _, exists := c.Get(logger.GinLoggerKey); exists {
		c.Set(logger.GinLoggerKey, reqLogger)
	}
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := dto.ErrCodeTokenInvalid
	errorMessage := "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrMissingRole), errors.Is(err, auth.ErrInvalidClaims):
		errorMessage = "Token does not identify an actor"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(errorCode, errorMessage, getRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetActorID retrieves the acting user's ID from gin.Context
func GetActorID(c *gin.Context) string {
	if actorID, exists := c.Get(JWTActorIDKey); exists {
		if id, ok := actorID.(string); ok {
			return id
		}
	}
	return ""
}

// GetActorUUID parses the acting user's ID
func GetActorUUID(c *gin.Context) (uuid.UUID, error) {
	id := GetActorID(c)
	if id == "" {
		return uuid.Nil, errors.New("actor not found in context")
	}
	return uuid.Parse(id)
}

// GetActorRole retrieves the acting user's role from gin.Context
func GetActorRole(c *gin.Context) string {
	if role, exists := c.Get(JWTActorRoleKey); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}
