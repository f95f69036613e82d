package resource

import (
	"context"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Store reads and writes documents of named collections.
type Store interface {
	Query(ctx context.Context, collection string, params domain.StoreParams) ([]domain.Document, error)
	Count(ctx context.Context, collection string, criteria domain.Criteria, hint domain.Hint) (int, error)
	Aggregate(ctx context.Context, collection string, pipeline []domain.Stage) ([]domain.Document, error)
	Upsert(ctx context.Context, collection, key string, doc domain.Document) error
}

// ObjectStore fetches decoded object payloads from a bucket.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) (any, error)
}
