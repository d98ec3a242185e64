package services

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHealthCheckAll(t *testing.T) {
	r := NewRegistry()
	down := errors.New("connection refused")

	r.Register("backend", NewPingProvider("backend", func(context.Context) error { return nil }))
	r.Register("redis", NewPingProvider("redis", func(context.Context) error { return down }))

	assert.Equal(t, []string{"backend", "redis"}, r.List())

	results := r.HealthCheckAll(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results["backend"])
	assert.ErrorIs(t, results["redis"], down)
	assert.False(t, Healthy(results))

	r.Register("redis", NewPingProvider("redis", func(context.Context) error { return nil }))
	assert.True(t, Healthy(r.HealthCheckAll(context.Background())))
}

func TestRedisProviderUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	p := NewRedisProvider(client)
	assert.Equal(t, "redis", p.Type())
	assert.Error(t, p.HealthCheck(context.Background()))
}
