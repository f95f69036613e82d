// Package resource serves searchable document collections built from query
// operators.
package resource

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/domain/hint"
	"github.com/kailas-cloud/mpapi/internal/query"
	"github.com/kailas-cloud/mpapi/internal/version"
)

// Response is the data and meta of a resource call.
type Response struct {
	Data []domain.Document
	Meta map[string]any
}

// Config declares a read-only resource.
type Config struct {
	// Collection is the store collection backing the resource.
	Collection string
	// Key is the primary key field used by GetByKey.
	Key       string
	Operators []query.Operator
	// Fields is the projection operator shared by search and GetByKey.
	// It is appended to Operators and must not be listed there.
	Fields *query.SparseFields
	Hint   hint.Scheme

	DisableSearch      bool
	DisableGetByKey    bool
	AllowUnknownParams bool
}

// ReadOnly serves search and get-by-key over one collection.
type ReadOnly struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewReadOnly creates a read-only resource.
func NewReadOnly(store Store, cfg Config) *ReadOnly {
	if cfg.Fields != nil {
		cfg.Operators = append(slices.Clone(cfg.Operators), cfg.Fields)
	}
	return &ReadOnly{store: store, cfg: cfg, now: time.Now}
}

// NewAggregation creates a resource answering searches with the pipeline
// built by op.
func NewAggregation(store Store, collection string, op query.Operator) *ReadOnly {
	return NewReadOnly(store, Config{
		Collection:      collection,
		Operators:       []query.Operator{op},
		DisableGetByKey: true,
	})
}

// Collection returns the backing collection name.
func (r *ReadOnly) Collection() string { return r.cfg.Collection }

// Key returns the primary key field.
func (r *ReadOnly) Key() string { return r.cfg.Key }

// SearchEnabled reports whether Search is served.
func (r *ReadOnly) SearchEnabled() bool { return !r.cfg.DisableSearch }

// GetByKeyEnabled reports whether GetByKey is served.
func (r *ReadOnly) GetByKeyEnabled() bool { return !r.cfg.DisableGetByKey && r.cfg.Key != "" }

// Indexes collects the indexes expected by the operators.
func (r *ReadOnly) Indexes() []domain.Index {
	var out []domain.Index
	if r.cfg.Key != "" {
		out = append(out, domain.Index{Key: r.cfg.Key})
	}
	indexers := make([]any, 0, len(r.cfg.Operators)+1)
	for _, op := range r.cfg.Operators {
		indexers = append(indexers, op)
	}
	if r.cfg.Hint != nil {
		indexers = append(indexers, r.cfg.Hint)
	}
	for _, op := range indexers {
		if ix, ok := op.(query.Indexer); ok {
			for _, i := range ix.Indexes() {
				if !slices.Contains(out, i) {
					out = append(out, i)
				}
			}
		}
	}
	return out
}

// Search runs every operator, queries the store and post-processes results.
func (r *ReadOnly) Search(ctx context.Context, params url.Values) (Response, error) {
	if r.cfg.DisableSearch {
		return Response{}, domain.ErrSearchDisabled
	}
	params = normalizeParams(params, r.cfg.Operators)
	if err := r.checkParams(params, r.cfg.Operators); err != nil {
		return Response{}, err
	}

	sp, err := run(r.cfg.Operators, params)
	if err != nil {
		return Response{}, err
	}

	var docs []domain.Document
	total := -1
	if len(sp.Pipeline) > 0 {
		docs, err = r.store.Aggregate(ctx, r.cfg.Collection, sp.Pipeline)
		if err != nil {
			return Response{}, fmt.Errorf("aggregate %s: %w", r.cfg.Collection, err)
		}
	} else {
		if r.cfg.Hint != nil && sp.Hint.IsEmpty() {
			sp.Hint = r.cfg.Hint.Hint(sp.Criteria)
		}
		docs, total, err = r.queryAndCount(ctx, sp)
		if err != nil {
			return Response{}, err
		}
	}

	docs, postMeta, err := postProcess(r.cfg.Operators, docs, params)
	if err != nil {
		return Response{}, err
	}
	if total < 0 {
		total = len(docs)
	}

	meta := r.meta(total)
	maps.Copy(meta, postMeta)
	return Response{Data: docs, Meta: meta}, nil
}

func (r *ReadOnly) queryAndCount(ctx context.Context, sp domain.StoreParams) ([]domain.Document, int, error) {
	var (
		docs  []domain.Document
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = r.store.Query(gctx, r.cfg.Collection, sp)
		if err != nil {
			return fmt.Errorf("query %s: %w", r.cfg.Collection, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = r.store.Count(gctx, r.cfg.Collection, sp.Criteria, sp.Hint)
		if err != nil {
			return fmt.Errorf("count %s: %w", r.cfg.Collection, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// GetByKey returns the single document whose key field equals key.
func (r *ReadOnly) GetByKey(ctx context.Context, key string, params url.Values) (Response, error) {
	if !r.GetByKeyEnabled() {
		return Response{}, domain.ErrSearchDisabled
	}
	var ops []query.Operator
	if r.cfg.Fields != nil {
		ops = append(ops, r.cfg.Fields)
	}
	params = normalizeParams(params, ops)
	if err := r.checkParams(params, ops); err != nil {
		return Response{}, err
	}
	sp, err := run(ops, params)
	if err != nil {
		return Response{}, err
	}
	sp.Criteria = domain.Criteria{r.cfg.Key: key}
	sp.Limit = 1

	docs, err := r.store.Query(ctx, r.cfg.Collection, sp)
	if err != nil {
		return Response{}, fmt.Errorf("get %s: %w", r.cfg.Collection, err)
	}
	if len(docs) == 0 {
		return Response{}, domain.NewNotFound(r.cfg.Key, key)
	}
	return Response{Data: docs[:1], Meta: r.meta(1)}, nil
}

func (r *ReadOnly) meta(total int) map[string]any {
	meta := map[string]any{
		"api_version": version.Version,
		"time_stamp":  r.now().UTC().Format(time.RFC3339Nano),
		"total_doc":   total,
	}
	for _, op := range r.cfg.Operators {
		if mp, ok := op.(query.MetaProvider); ok {
			maps.Copy(meta, mp.Meta())
		}
	}
	return meta
}

func (r *ReadOnly) checkParams(params url.Values, ops []query.Operator) error {
	if r.cfg.AllowUnknownParams {
		return nil
	}
	return checkParams(params, ops)
}

func checkParams(params url.Values, ops []query.Operator) error {
	known := map[string]bool{}
	for _, op := range ops {
		for _, p := range op.Params() {
			known[p] = true
		}
	}
	var unknown []string
	for p := range params {
		if !known[p] {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	allowed := slices.Sorted(maps.Keys(known))
	return domain.NewQueryError("", "Unknown parameters %s; accepted parameters are %s",
		strings.Join(unknown, ", "), strings.Join(allowed, ", "))
}

// normalizeParams maps underscored client parameters such as _limit onto the
// plain names an operator accepts. _all_fields is dropped where no operator
// projects fields.
func normalizeParams(params url.Values, ops []query.Operator) url.Values {
	known := map[string]bool{}
	for _, op := range ops {
		for _, p := range op.Params() {
			known[p] = true
		}
	}
	var out url.Values
	for p, v := range params {
		if known[p] || !strings.HasPrefix(p, "_") {
			continue
		}
		if out == nil {
			out = maps.Clone(params)
		}
		delete(out, p)
		if plain := strings.TrimPrefix(p, "_"); known[plain] {
			if _, set := out[plain]; !set {
				out[plain] = v
			}
		} else if p != "_all_fields" {
			out[p] = v
		}
	}
	if out == nil {
		return params
	}
	return out
}

func run(ops []query.Operator, params url.Values) (domain.StoreParams, error) {
	parts := make([]domain.StoreParams, 0, len(ops))
	for _, op := range ops {
		sp, err := op.Query(params)
		if err != nil {
			return domain.StoreParams{}, err
		}
		parts = append(parts, sp)
	}
	return domain.Merge(parts...), nil
}

func postProcess(ops []query.Operator, docs []domain.Document, params url.Values) ([]domain.Document, map[string]any, error) {
	meta := map[string]any{}
	for _, op := range ops {
		pp, ok := op.(query.PostProcessor)
		if !ok {
			continue
		}
		out, m, err := pp.PostProcess(docs, params)
		if err != nil {
			return nil, nil, err
		}
		docs = out
		maps.Copy(meta, m)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, meta, nil
}
