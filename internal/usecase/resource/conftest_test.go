package resource

import (
	"context"
	"sync"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	mu sync.Mutex

	docs  []domain.Document
	total int
	err   error

	queried   []domain.StoreParams
	counted   []domain.Criteria
	hints     []domain.Hint
	pipelines [][]domain.Stage
	upserted  []domain.Document
}

func (m *mockStore) Query(_ context.Context, _ string, p domain.StoreParams) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried = append(m.queried, p)
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockStore) Count(_ context.Context, _ string, c domain.Criteria, h domain.Hint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counted = append(m.counted, c)
	m.hints = append(m.hints, h)
	if m.err != nil {
		return 0, m.err
	}
	return m.total, nil
}

func (m *mockStore) Aggregate(_ context.Context, _ string, p []domain.Stage) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines = append(m.pipelines, p)
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockStore) Upsert(_ context.Context, _, _ string, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, doc)
	return nil
}

type mockObjects struct {
	data map[string]any
	err  error
	keys []string
}

func (m *mockObjects) Get(_ context.Context, _, key string) (any, error) {
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}
