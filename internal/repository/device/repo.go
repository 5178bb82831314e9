package device

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/daefinder/internal/db"
	"github.com/kailas-cloud/daefinder/internal/domain"
	domdev "github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/query"
	logpkg "github.com/kailas-cloud/daefinder/internal/logger"
)

// DefaultPageSize is used when Config.PageSize is not positive.
const DefaultPageSize = 500

// ErrUnsupportedPredicate is returned when a descriptor cannot be expressed as an FT query.
var ErrUnsupportedPredicate = errors.New("unsupported predicate")

// store is the consumer interface for device documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Config controls key layout and read paging.
type Config struct {
	KeyPrefix string
	PageSize  int
}

// Repo implements usecase/fetch.Repository and usecase/seed.Writer.
type Repo struct {
	store    store
	prefix   string
	pageSize int
}

// New creates a device repository.
func New(s store, cfg Config) *Repo {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Repo{store: s, prefix: cfg.KeyPrefix, pageSize: cfg.PageSize}
}

// IndexName returns the FT index covering device documents.
func (r *Repo) IndexName() string {
	return r.prefix + "idx"
}

// Query returns every raw document matching the descriptor, paging through FT.SEARCH.
// Order follows the store's result order.
func (r *Repo) Query(ctx context.Context, d query.Descriptor) ([]domdev.RawDocument, error) {
	conds, err := conditions(d)
	if err != nil {
		return nil, err
	}

	docs := make([]domdev.RawDocument, 0)
	offset := 0
	for {
		res, err := r.store.Search(ctx, &db.ListQuery{
			IndexName:    r.IndexName(),
			Conditions:   conds,
			Offset:       offset,
			Limit:        r.pageSize,
			ReturnFields: domdev.WireFields,
		})
		if err != nil {
			return nil, fmt.Errorf("search %s at offset %d: %w", r.IndexName(), offset, err)
		}
		if res == nil || len(res.Entries) == 0 {
			break
		}

		for _, e := range res.Entries {
			docs = append(docs, domdev.RawDocument{ID: r.extractID(e.Key), Fields: e.Fields})
		}

		logpkg.FromContext(ctx).Debug("Device page fetched",
			zap.String("index", r.IndexName()),
			zap.Int("offset", offset),
			zap.Int("entries", len(res.Entries)),
			zap.Int("total", res.Total),
		)

		offset += len(res.Entries)
		if offset >= res.Total {
			break
		}
	}
	return docs, nil
}

// Count returns the number of documents matching the descriptor.
func (r *Repo) Count(ctx context.Context, d query.Descriptor) (int, error) {
	conds, err := conditions(d)
	if err != nil {
		return 0, err
	}
	res, err := r.store.Search(ctx, &db.ListQuery{IndexName: r.IndexName(), Conditions: conds})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.IndexName(), err)
	}
	if res == nil {
		return 0, nil
	}
	return res.Total, nil
}

// EnsureIndex creates the device index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.IndexName(), r.docPrefix())
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	logpkg.FromContext(ctx).Info("Creating device index", zap.Stringer("definition", def))
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Reset drops the index together with every indexed document.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.IndexName(), true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// UpsertBatch writes raw documents as hashes in one pipelined round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, docs []domdev.RawDocument) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document without id: %w", domain.ErrMalformedRecord)
		}
		items = append(items, db.HashSetItem{Key: r.docKey(d.ID), Fields: maps.Clone(d.Fields)})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset %d documents: %w", len(items), err)
	}
	return nil
}

func (r *Repo) docPrefix() string {
	return r.prefix + "device:"
}

func (r *Repo) docKey(id string) string {
	return r.docPrefix() + id
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, r.docPrefix())
}

// conditions maps logical predicates onto wire fields.
func conditions(d query.Descriptor) ([]db.Condition, error) {
	preds := d.Predicates()
	conds := make([]db.Condition, 0, len(preds))
	for _, p := range preds {
		if p.Op() != query.OpEq {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPredicate, p)
		}
		v := p.Value()
		switch p.Field() {
		case query.FieldStatus:
			wire := domdev.Status(v.Str()).Wire()
			if v.Kind() != query.KindString || wire == "" {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPredicate, p)
			}
			conds = append(conds, db.TagEq(domdev.FieldStatus, wire))
		case query.FieldPostalCode:
			if v.Kind() != query.KindInt {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPredicate, p)
			}
			conds = append(conds, db.NumericEq(domdev.FieldPostalCode, strconv.Itoa(v.Int())))
		case query.FieldCity:
			if v.Kind() != query.KindString || v.Str() == "" {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPredicate, p)
			}
			conds = append(conds, db.TagEq(domdev.FieldCity, v.Str()))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPredicate, p)
		}
	}
	return conds, nil
}
