package cache

import (
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks the Redis store when a client is available and
// the in-memory store otherwise. The in-memory store does not share claims
// between instances, so a replayed key can slip through behind a load balancer.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis disabled, using in-memory idempotency store; Idempotency-Key claims are not shared between instances")
	return NewInMemoryIdempotencyStore()
}
