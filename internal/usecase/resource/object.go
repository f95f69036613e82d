package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// ObjectConfig declares a resource whose payloads live in object storage.
type ObjectConfig struct {
	Config

	// Bucket holds the payloads, keyed by fs_id or, when absent, task_id.
	Bucket string
}

// Object searches index documents and attaches their stored payloads as
// "data". Payloads are skipped when the projection leaves data out.
type Object struct {
	*ReadOnly
	objects ObjectStore
	bucket  string
}

// NewObject creates an object resource. objects may be nil when object
// storage is not configured.
func NewObject(store Store, objects ObjectStore, cfg ObjectConfig) *Object {
	return &Object{ReadOnly: NewReadOnly(store, cfg.Config), objects: objects, bucket: cfg.Bucket}
}

// Search returns matching index documents with their payloads.
func (o *Object) Search(ctx context.Context, params url.Values) (Response, error) {
	resp, err := o.ReadOnly.Search(ctx, params)
	if err != nil {
		return Response{}, err
	}
	if err := o.attach(ctx, resp.Data, params); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// GetByKey returns one index document with its payload.
func (o *Object) GetByKey(ctx context.Context, key string, params url.Values) (Response, error) {
	resp, err := o.ReadOnly.GetByKey(ctx, key, params)
	if err != nil {
		return Response{}, err
	}
	if err := o.attach(ctx, resp.Data, params); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (o *Object) attach(ctx context.Context, docs []domain.Document, params url.Values) error {
	if !o.wantsData(params) || len(docs) == 0 {
		return nil
	}
	if o.objects == nil {
		return domain.ErrObjectStoreUnavailable
	}
	for _, doc := range docs {
		key, _ := doc["fs_id"].(string)
		if key == "" {
			key, _ = doc["task_id"].(string)
		}
		if key == "" {
			continue
		}
		data, err := o.objects.Get(ctx, o.bucket, key)
		if errors.Is(err, domain.ErrNotFound) {
			doc["data"] = nil
			continue
		}
		if err != nil {
			return fmt.Errorf("fetch object %s/%s: %w", o.bucket, key, err)
		}
		doc["data"] = data
	}
	return nil
}

func (o *Object) wantsData(params url.Values) bool {
	if o.cfg.Fields == nil {
		return true
	}
	sp, err := o.cfg.Fields.Query(params)
	if err != nil || sp.Properties == nil {
		return true
	}
	for _, f := range sp.Properties {
		if f == "data" {
			return true
		}
	}
	return false
}
