package fetch

import (
	"context"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
	"github.com/kailas-cloud/daefinder/internal/domain/query"
)

// Repository executes an equality-filtered read against the device collection.
type Repository interface {
	Query(ctx context.Context, d query.Descriptor) ([]device.RawDocument, error)
}

// Locator resolves the user's current position.
type Locator interface {
	Locate(ctx context.Context) (geo.Point, error)
}
