package respcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

func TestQuery_MissThenHit(t *testing.T) {
	inner := &mockStore{docs: []domain.Document{{"material_id": "mp-149", "band_gap": 0.6}}}
	s, kv := newTestStore(t, inner, Config{Prefix: "mpapi:", TTL: time.Minute})
	ctx := context.Background()
	params := domain.StoreParams{Criteria: domain.Criteria{"formula_pretty": "Si"}, Limit: 10}

	first, err := s.Query(ctx, "summary", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Query(ctx, "summary", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.queries != 1 {
		t.Fatalf("expected inner store queried once, got %d", inner.queries)
	}
	if second[0]["material_id"] != first[0]["material_id"] || second[0]["band_gap"] != 0.6 {
		t.Errorf("unexpected cached docs: %v", second)
	}
	for k, ttl := range kv.ttls {
		if ttl != time.Minute {
			t.Errorf("expected ttl 1m for %s, got %v", k, ttl)
		}
	}
}

func TestQuery_DistinctParamsDistinctKeys(t *testing.T) {
	inner := &mockStore{docs: []domain.Document{}}
	s, kv := newTestStore(t, inner, Config{})
	ctx := context.Background()

	_, _ = s.Query(ctx, "summary", domain.StoreParams{Limit: 10})
	_, _ = s.Query(ctx, "summary", domain.StoreParams{Limit: 20})
	_, _ = s.Query(ctx, "thermo", domain.StoreParams{Limit: 10})

	if inner.queries != 3 || len(kv.data) != 3 {
		t.Fatalf("expected 3 misses and 3 keys, got %d queries %d keys", inner.queries, len(kv.data))
	}
}

func TestCount_Cached(t *testing.T) {
	inner := &mockStore{total: 42}
	s, _ := newTestStore(t, inner, Config{})
	ctx := context.Background()

	for range 2 {
		n, err := s.Count(ctx, "summary", domain.Criteria{"deprecated": false}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 42 {
			t.Fatalf("expected 42, got %d", n)
		}
	}
	if inner.counts != 1 {
		t.Errorf("expected one inner count, got %d", inner.counts)
	}
}

func TestAggregate_Cached(t *testing.T) {
	inner := &mockStore{docs: []domain.Document{{"formula_pretty": "SiO2"}}}
	s, _ := newTestStore(t, inner, Config{})
	pipeline := []domain.Stage{{"$match": map[string]any{"formula_pretty": "SiO2"}}}

	_, _ = s.Aggregate(context.Background(), "formula_autocomplete", pipeline)
	_, _ = s.Aggregate(context.Background(), "formula_autocomplete", pipeline)

	if inner.aggregates != 1 {
		t.Errorf("expected one inner aggregate, got %d", inner.aggregates)
	}
}

func TestAggregate_SampleNotCached(t *testing.T) {
	tests := []struct {
		name     string
		pipeline []domain.Stage
	}{
		{"top level", []domain.Stage{
			{"$match": map[string]any{"band_gap": map[string]any{"$gte": 0.0}}},
			{"$sample": map[string]any{"size": 100}},
		}},
		{"in facet", []domain.Stage{
			{"$facet": map[string]any{"picked": []domain.Stage{{"$sample": map[string]any{"size": 5}}}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockStore{docs: []domain.Document{{"band_gap": 1.1}}}
			s, kv := newTestStore(t, inner, Config{})

			_, _ = s.Aggregate(context.Background(), "summary", tt.pipeline)
			_, _ = s.Aggregate(context.Background(), "summary", tt.pipeline)

			if inner.aggregates != 2 {
				t.Errorf("expected every sampled aggregate to reach the store, got %d", inner.aggregates)
			}
			if len(kv.data) != 0 {
				t.Errorf("expected nothing cached, got %d keys", len(kv.data))
			}
		})
	}
}

func TestBypass(t *testing.T) {
	inner := &mockStore{docs: []domain.Document{}}
	s, kv := newTestStore(t, inner, Config{Bypass: []string{"user_settings"}})
	ctx := context.Background()

	_, _ = s.Query(ctx, "user_settings", domain.StoreParams{})
	_, _ = s.Query(ctx, "user_settings", domain.StoreParams{})

	if inner.queries != 2 {
		t.Errorf("expected bypassed collection to reach the store twice, got %d", inner.queries)
	}
	if len(kv.data) != 0 {
		t.Errorf("expected nothing cached, got %d keys", len(kv.data))
	}
}

func TestInnerError_NotCached(t *testing.T) {
	inner := &mockStore{err: errors.New("conn reset")}
	s, kv := newTestStore(t, inner, Config{})

	if _, err := s.Query(context.Background(), "summary", domain.StoreParams{}); err == nil {
		t.Fatal("expected error")
	}
	if len(kv.data) != 0 {
		t.Error("errors must not be cached")
	}
}

func TestCacheUnavailable_FallsThrough(t *testing.T) {
	inner := &mockStore{total: 3}
	kv := newMockKVStore()
	kv.getErr = errors.New("redis down")
	kv.setErr = errors.New("redis down")
	s := New(inner, kv, Config{}, nil, zap.NewNop())

	n, err := s.Count(context.Background(), "summary", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}

func TestUpsert_WritesThrough(t *testing.T) {
	inner := &mockStore{}
	s, _ := newTestStore(t, inner, Config{})
	if err := s.Upsert(context.Background(), "mpcomplete", "submission_id", domain.Document{"submission_id": "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.upserts != 1 {
		t.Errorf("expected one upsert, got %d", inner.upserts)
	}
}

func TestCacheCounter(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockStore{total: 1}
	s := New(inner, newMockKVStore(), Config{}, counter, zap.NewNop())

	_, _ = s.Count(context.Background(), "summary", nil, nil)
	_, _ = s.Count(context.Background(), "summary", nil, nil)

	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("expected 1 miss, got %f", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("expected 1 hit, got %f", v)
	}
}

func TestUpsert_InvalidatesCollection(t *testing.T) {
	inner := &mockStore{docs: []domain.Document{{"task_id": "mp-1"}}}
	s, kv := newTestStore(t, inner, Config{Prefix: "mpapi:"})
	ctx := context.Background()

	_, _ = s.Query(ctx, "tasks", domain.StoreParams{Limit: 1})
	_, _ = s.Query(ctx, "summary", domain.StoreParams{Limit: 1})
	if err := s.Upsert(ctx, "tasks", "task_id", domain.Document{"task_id": "mp-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = s.Query(ctx, "tasks", domain.StoreParams{Limit: 1})
	_, _ = s.Query(ctx, "summary", domain.StoreParams{Limit: 1})

	if inner.queries != 3 {
		t.Errorf("expected only the tasks query to miss again, got %d inner queries", inner.queries)
	}
	if len(kv.data) != 2 {
		t.Errorf("expected 2 cached responses, got %d", len(kv.data))
	}
}

func TestUpsert_InvalidationFailureIgnored(t *testing.T) {
	inner := &mockStore{}
	s, kv := newTestStore(t, inner, Config{})
	kv.delErr = errors.New("redis down")

	if err := s.Upsert(context.Background(), "tasks", "task_id", domain.Document{"task_id": "mp-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSyncVersion(t *testing.T) {
	inner := &mockStore{docs: []domain.Document{}}
	s, kv := newTestStore(t, inner, Config{Prefix: "mpapi:"})
	ctx := context.Background()

	purged, err := s.SyncVersion(ctx, "2025.09.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !purged {
		t.Error("expected a purge on an empty cache")
	}

	_, _ = s.Query(ctx, "summary", domain.StoreParams{Limit: 1})
	purged, err = s.SyncVersion(ctx, "2025.09.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged || len(kv.data) != 2 {
		t.Fatalf("expected cache kept for the same version, purged=%v keys=%d", purged, len(kv.data))
	}

	purged, err = s.SyncVersion(ctx, "2026.01.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !purged {
		t.Error("expected a purge on a version change")
	}
	if len(kv.data) != 1 || string(kv.data["mpapi:db_version"]) != "2026.01.10" {
		t.Errorf("expected only the version marker to remain, got %v", kv.data)
	}
}

func TestSyncVersion_CacheDown(t *testing.T) {
	kv := newMockKVStore()
	kv.getErr = errors.New("redis down")
	s := New(&mockStore{}, kv, Config{}, nil, zap.NewNop())

	if _, err := s.SyncVersion(context.Background(), "v1"); err == nil {
		t.Fatal("expected error")
	}
}
