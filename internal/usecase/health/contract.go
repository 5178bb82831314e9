package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LocatorChecker checks that the location provider can answer.
type LocatorChecker interface {
	HealthCheck(ctx context.Context) error
}
