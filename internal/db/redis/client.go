package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/daefinder/internal/db"
)

var _ db.Store = (*Store)(nil)

// readinessPollInterval is the delay between pings in WaitForReady.
const readinessPollInterval = 100 * time.Millisecond

// Config selects the Redis deployment holding the device hashes.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store serves device hashes and their FT index over rueidis.
// It needs Redis 8+ (or Redis Stack) for FT.* commands.
type Store struct {
	client rueidis.Client
}

// NewStore dials the configured addresses.
// Client-side caching is off: every search must see the latest seed.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		// parseListResult reads FT.SEARCH replies as flat RESP2 arrays.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}

	return &Store{client: client}, nil
}

// Ping reports whether the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers, ctx ends or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr matches server error replies by substring, ignoring case.
// Redis and Redis Stack word FT errors differently across versions.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
