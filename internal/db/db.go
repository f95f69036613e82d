package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentStore reads and writes documents of named collections.
type DocumentStore interface {
	Pinger
	Query(ctx context.Context, collection string, params domain.StoreParams) ([]domain.Document, error)
	Count(ctx context.Context, collection string, criteria domain.Criteria, hint domain.Hint) (int, error)
	Aggregate(ctx context.Context, collection string, pipeline []domain.Stage) ([]domain.Document, error)
	Upsert(ctx context.Context, collection, key string, doc domain.Document) error
	EnsureIndexes(ctx context.Context, collection string, indexes []domain.Index) error
	Close(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// KVStore holds cached responses under string keys.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// WaitForReady polls p until it answers or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return &Error{Op: OpPing, Err: ctx.Err()}
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
