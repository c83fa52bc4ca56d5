package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultSequencePrefix = "inventory:txseq:"
	// a day key outlives its UTC day so late writers near midnight still see it
	sequenceKeyTTL = 48 * time.Hour
)

// RedisSequencer hands out daily transaction-number sequences with INCR.
// One counter exists per prefix and UTC day.
type RedisSequencer struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSequencer creates a sequencer on an existing client
func NewRedisSequencer(client *redis.Client, keyPrefix string) *RedisSequencer {
	if keyPrefix == "" {
		keyPrefix = defaultSequencePrefix
	}
	return &RedisSequencer{client: client, keyPrefix: keyPrefix}
}

// Next increments and returns the counter for prefix on day.
// The first call of a day returns 1.
func (s *RedisSequencer) Next(ctx context.Context, prefix string, day time.Time) (int, error) {
	key := s.key(prefix, day)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", key, err)
	}
	return int(incr.Val()), nil
}

func (s *RedisSequencer) key(prefix string, day time.Time) string {
	return s.keyPrefix + prefix + ":" + day.UTC().Format("20060102")
}
