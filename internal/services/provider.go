package services

import (
	"context"
)

// Provider is a dependency the gateway needs to serve traffic
type Provider interface {
	// Type returns the dependency kind (backend, redis, postgres, ...)
	Type() string

	// HealthCheck reports whether the dependency is reachable
	HealthCheck(ctx context.Context) error
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	serviceType string
}

// Type returns the service type
func (p *BaseProvider) Type() string {
	return p.serviceType
}

// PingProvider adapts a ping function to Provider
type PingProvider struct {
	BaseProvider
	ping func(ctx context.Context) error
}

// NewPingProvider creates a provider whose health check calls ping
func NewPingProvider(serviceType string, ping func(ctx context.Context) error) *PingProvider {
	return &PingProvider{
		BaseProvider: BaseProvider{serviceType: serviceType},
		ping:         ping,
	}
}

// HealthCheck calls the wrapped ping function
func (p *PingProvider) HealthCheck(ctx context.Context) error {
	return p.ping(ctx)
}
