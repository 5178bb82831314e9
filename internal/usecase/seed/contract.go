package seed

import (
	"context"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
)

// Writer loads raw device documents into the store.
type Writer interface {
	EnsureIndex(ctx context.Context) error
	Reset(ctx context.Context) error
	UpsertBatch(ctx context.Context, docs []device.RawDocument) error
}
