package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/daefinder/internal/domain"
	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
	"github.com/kailas-cloud/daefinder/internal/domain/query"
	"github.com/kailas-cloud/daefinder/internal/metrics"
	"github.com/kailas-cloud/daefinder/internal/usecase/proximity"
)

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers fn to receive a snapshot after every committed transition.
// Snapshots arrive in commit order. fn may call State but must not issue requests.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithLogger sets the controller logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocator enables proximity searches through Nearby.
func WithLocator(l Locator) Option {
	return func(c *Controller) { c.locator = l }
}

// Controller owns the fetch state of one consuming context.
//
// Every request gets a fresh token. Only the settlement carrying the latest
// token may commit; older settlements are discarded whatever their arrival
// order. In-flight calls are never aborted by supersession.
type Controller struct {
	repo     Repository
	locator  Locator
	logger   *zap.Logger
	observer func(State)

	// notifyMu is always acquired before mu and held while the observer runs,
	// so snapshots are delivered in commit order and observers can call State.
	notifyMu sync.Mutex

	mu     sync.Mutex
	state  State
	latest Token
	closed bool

	wg sync.WaitGroup
}

// New creates an idle controller reading from repo.
func New(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:   repo,
		logger: zap.NewNop(),
		state:  State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute issues an attribute search and returns its token without waiting.
// After Close it does nothing and returns 0.
func (c *Controller) Execute(ctx context.Context, d query.Descriptor) Token {
	tok, ok := c.begin(KindAttribute)
	if !ok {
		return 0
	}

	c.logger.Debug("Fetch issued",
		zap.Uint64("token", uint64(tok)),
		zap.String("kind", string(KindAttribute)),
		zap.Stringer("query", d),
	)

	go func() {
		defer c.wg.Done()
		start := time.Now()

		raws, err := c.repo.Query(ctx, d)
		if err != nil {
			c.fail(tok, KindAttribute, start, wrapAs(domain.ErrStoreUnavailable, err))
			return
		}

		recs, rejected := c.normalize(tok, KindAttribute, raws)
		c.commit(tok, KindAttribute, start, func(s *State) {
			s.Status = StatusDone
			s.Data = recs
			s.Err = nil
			s.Rejected = rejected
			s.Origin = nil
		})
	}()

	return tok
}

// Nearby locates the user, fetches every active device and ranks them by distance.
// A location failure never reaches the store. After Close it does nothing and returns 0.
func (c *Controller) Nearby(ctx context.Context) Token {
	tok, ok := c.begin(KindProximity)
	if !ok {
		return 0
	}

	c.logger.Debug("Fetch issued",
		zap.Uint64("token", uint64(tok)),
		zap.String("kind", string(KindProximity)),
	)

	go func() {
		defer c.wg.Done()
		start := time.Now()

		origin, err := c.locate(ctx)
		if err != nil {
			c.fail(tok, KindProximity, start, wrapAs(domain.ErrLocationUnavailable, err))
			return
		}
		if !origin.Valid() {
			err := fmt.Errorf("origin %s: %w", origin, geo.ErrInvalidCoordinates)
			c.fail(tok, KindProximity, start, wrapAs(domain.ErrLocationUnavailable, err))
			return
		}

		if !c.isLatest(tok) {
			c.discard(tok, KindProximity, start)
			return
		}

		raws, err := c.repo.Query(ctx, query.Active())
		if err != nil {
			c.fail(tok, KindProximity, start, wrapAs(domain.ErrStoreUnavailable, err))
			return
		}

		recs, rejected := c.normalize(tok, KindProximity, raws)
		ranked, err := proximity.Rank(origin, recs)
		if err != nil {
			c.fail(tok, KindProximity, start, wrapAs(domain.ErrLocationUnavailable, err))
			return
		}

		c.commit(tok, KindProximity, start, func(s *State) {
			s.Status = StatusDone
			s.Data = ranked
			s.Err = nil
			s.Rejected = rejected
			s.Origin = &origin
		})
	}()

	return tok
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Wait blocks until every launched request has settled.
// It must not run concurrently with Execute or Nearby; call it from the
// goroutine that issues requests, or after Close.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close makes the controller ignore pending settlements and refuse new requests.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// begin allocates the next token and enters loading.
func (c *Controller) begin(kind Kind) (Token, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, false
	}
	c.latest++
	tok := c.latest
	c.state.Status = StatusLoading
	c.state.Err = nil
	c.state.Token = tok
	c.state.Kind = kind
	c.wg.Add(1)
	snap := c.state.clone()
	c.mu.Unlock()

	c.notify(snap)
	return tok, true
}

// commit applies mutate if tok is still the latest token and reports whether it did.
func (c *Controller) commit(tok Token, kind Kind, start time.Time, mutate func(*State)) bool {
	c.notifyMu.Lock()
	c.mu.Lock()
	if c.closed || tok != c.latest {
		c.mu.Unlock()
		c.notifyMu.Unlock()
		c.discard(tok, kind, start)
		return false
	}
	mutate(&c.state)
	outcome := metrics.OutcomeDone
	if c.state.Status == StatusFailure {
		outcome = metrics.OutcomeFailure
	}
	rejected, count := c.state.Rejected, len(c.state.Data)
	snap := c.state.clone()
	c.mu.Unlock()

	c.notify(snap)
	c.notifyMu.Unlock()

	metrics.FetchRequestsTotal.WithLabelValues(string(kind), outcome).Inc()
	metrics.FetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	c.logger.Debug("Fetch committed",
		zap.Uint64("token", uint64(tok)),
		zap.String("kind", string(kind)),
		zap.String("outcome", outcome),
		zap.Int("records", count),
		zap.Int("rejected", rejected),
		zap.Duration("duration", time.Since(start)),
	)
	return true
}

func (c *Controller) fail(tok Token, kind Kind, start time.Time, err error) {
	committed := c.commit(tok, kind, start, func(s *State) {
		s.Status = StatusFailure
		s.Data = nil
		s.Err = err
		s.Rejected = 0
		s.Origin = nil
	})
	if committed {
		c.logger.Warn("Fetch failed",
			zap.Uint64("token", uint64(tok)),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// discard accounts for a settlement that lost to a newer request or arrived after Close.
func (c *Controller) discard(tok Token, kind Kind, start time.Time) {
	metrics.FetchRequestsTotal.WithLabelValues(string(kind), metrics.OutcomeStale).Inc()
	metrics.FetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	c.logger.Debug("Stale fetch discarded",
		zap.Uint64("token", uint64(tok)),
		zap.String("kind", string(kind)),
	)
}

// notify hands snap to the observer. Callers hold notifyMu but not mu.
func (c *Controller) notify(snap State) {
	if c.observer != nil {
		c.observer(snap)
	}
}

func (c *Controller) isLatest(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && tok == c.latest
}

func (c *Controller) locate(ctx context.Context) (geo.Point, error) {
	if c.locator == nil {
		return geo.Point{}, errors.New("no locator configured")
	}
	p, err := c.locator.Locate(ctx)
	if err != nil {
		return geo.Point{}, fmt.Errorf("locate: %w", err)
	}
	return p, nil
}

func (c *Controller) normalize(tok Token, kind Kind, raws []device.RawDocument) ([]device.Record, int) {
	recs, rejected := device.NormalizeAll(raws)
	if len(rejected) > 0 {
		metrics.RecordsRejectedTotal.WithLabelValues(string(kind)).Add(float64(len(rejected)))
		for _, err := range rejected {
			c.logger.Debug("Malformed record dropped",
				zap.Uint64("token", uint64(tok)),
				zap.Error(err),
			)
		}
	}
	return recs, len(rejected)
}

// wrapAs tags err with sentinel unless it already carries it.
func wrapAs(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
