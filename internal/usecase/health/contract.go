package health

import "context"

// CachePinger checks cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks model provider availability.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
