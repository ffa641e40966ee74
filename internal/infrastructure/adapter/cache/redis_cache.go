package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gscube/bulkerpay/internal/domain/entity"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/domain/port/persistence"
)

const keyPrefix = "bulkerpay:settled:"

// Config holds the Redis connection settings
type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RedisCache keeps recently settled transaction records in Redis, keyed by
// gateway reference, so repeated verify calls for a settled payment are
// answered without a store read or a gateway round trip.
type RedisCache struct {
	client *redis.Client
	logger coreport.Logger
}

// NewRedisCache connects to Redis and returns a verification cache. A failed
// ping is returned as an error so callers can fall back to the noop cache.
func NewRedisCache(ctx context.Context, cfg Config, logger coreport.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

// GetSettled returns the cached settled record for the reference, or nil on a
// miss. A record that fails to decode is treated as a miss after deletion.
func (c *RedisCache) GetSettled(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	data, err := c.client.Get(ctx, keyPrefix+reference).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settled record from redis: %w", err)
	}

	var txn entity.PaymentTransaction
	if err := json.Unmarshal(data, &txn); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", map[string]any{
			"gateway_reference": reference,
			"error":             err.Error(),
		})
		c.client.Del(ctx, keyPrefix+reference)
		return nil, nil
	}
	return &txn, nil
}

// StoreSettled caches a settled record under its gateway reference for ttl
func (c *RedisCache) StoreSettled(ctx context.Context, txn *entity.PaymentTransaction, ttl time.Duration) error {
	data, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("failed to encode settled record: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+txn.GatewayReference, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache settled record in redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ persistence.VerificationCache = (*RedisCache)(nil)
