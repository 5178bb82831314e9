package db

import (
	"context"
	"time"
)

// Store is everything the CLI needs from the device database.
// Consumers depend on the narrow interfaces below instead.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger backs the database health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one device hash: its full key and wire fields.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash writes used to load device documents.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// IndexManager creates, probes and drops the device FT index.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides equality-filtered reads over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *ListQuery) (*SearchResult, error)
}
