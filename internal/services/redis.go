package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisProvider checks the Redis instance holding the catalog snapshot.
// It shares the snapshot store's client and does not close it.
type RedisProvider struct {
	BaseProvider
	client *redis.Client
}

// NewRedisProvider creates a new Redis provider over an existing client
func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{
		BaseProvider: BaseProvider{serviceType: "redis"},
		client:       client,
	}
}

// HealthCheck verifies Redis connectivity
func (p *RedisProvider) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	return nil
}
