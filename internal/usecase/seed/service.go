package seed

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/metrics"
)

// Defaults for Config.
const (
	DefaultBatchSize   = 200
	DefaultConcurrency = 4
)

// Config controls batching of the load.
type Config struct {
	BatchSize   int
	Concurrency int
	// Reset drops the index and its documents before loading.
	Reset bool
}

// Result summarizes a load.
type Result struct {
	Written int
	Batches int
}

// Service loads datasets into the store.
type Service struct {
	w      Writer
	cfg    Config
	logger *zap.Logger
}

// New creates a seed service.
func New(w Writer, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{w: w, cfg: cfg, logger: logger}
}

// Seed ensures the index exists and writes docs in concurrent batches.
// progress, when set, receives the size of every written batch and may be
// called from several goroutines. The first failing batch cancels the rest.
func (s *Service) Seed(ctx context.Context, docs []device.RawDocument, progress func(n int)) (Result, error) {
	if s.cfg.Reset {
		if err := s.w.Reset(ctx); err != nil {
			return Result{}, fmt.Errorf("reset: %w", err)
		}
	}
	if err := s.w.EnsureIndex(ctx); err != nil {
		return Result{}, fmt.Errorf("ensure index: %w", err)
	}

	var written atomic.Int64
	batches := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for start := 0; start < len(docs); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(docs))
		batch := docs[start:end]
		batches++

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := s.w.UpsertBatch(gctx, batch); err != nil {
				metrics.SeedDocumentsTotal.WithLabelValues("failed").Add(float64(len(batch)))
				return fmt.Errorf("batch at %d: %w", start, err)
			}
			metrics.SeedDocumentsTotal.WithLabelValues("written").Add(float64(len(batch)))
			written.Add(int64(len(batch)))
			if progress != nil {
				progress(len(batch))
			}
			return nil
		})
	}

	err := g.Wait()
	res := Result{Written: int(written.Load()), Batches: batches}
	if err != nil {
		s.logger.Error("Seed failed",
			zap.Int("written", res.Written),
			zap.Int("total", len(docs)),
			zap.Error(err),
		)
		return res, err
	}

	s.logger.Info("Seed completed",
		zap.Int("written", res.Written),
		zap.Int("batches", res.Batches),
	)
	return res, nil
}
