package respcache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/internal/db"
	"github.com/kailas-cloud/mpapi/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	docs  []domain.Document
	total int
	err   error

	queries    int
	counts     int
	aggregates int
	upserts    int
}

func (m *mockStore) Query(_ context.Context, _ string, _ domain.StoreParams) ([]domain.Document, error) {
	m.queries++
	return m.docs, m.err
}

func (m *mockStore) Count(_ context.Context, _ string, _ domain.Criteria, _ domain.Hint) (int, error) {
	m.counts++
	return m.total, m.err
}

func (m *mockStore) Aggregate(_ context.Context, _ string, _ []domain.Stage) ([]domain.Document, error) {
	m.aggregates++
	return m.docs, m.err
}

func (m *mockStore) Upsert(_ context.Context, _, _ string, _ domain.Document) error {
	m.upserts++
	return m.err
}

// mockKVStore is an in-memory consumer interface for tests.
type mockKVStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	delErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *mockKVStore) DelPrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return 0, m.delErr
	}
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			delete(m.ttls, k)
			n++
		}
	}
	return n, nil
}

func newTestStore(t *testing.T, inner *mockStore, cfg Config) (*Store, *mockKVStore) {
	t.Helper()
	kv := newMockKVStore()
	return New(inner, kv, cfg, nil, zap.NewNop()), kv
}
