package mpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// UserSettingsRester stores per-consumer settings.
type UserSettingsRester struct {
	*Rester[schema.UserSettingsDoc]
}

// SetUserSettings replaces the settings of a consumer.
func (r *UserSettingsRester) SetUserSettings(ctx context.Context, consumerID string, settings map[string]any) (schema.UserSettingsDoc, error) {
	id, err := parseConsumerID(consumerID)
	if err != nil {
		return schema.UserSettingsDoc{}, err
	}
	if settings == nil {
		settings = map[string]any{}
	}
	raw, err := r.post(ctx, "", url.Values{"consumer_id": {id}}, settings)
	if err != nil {
		return schema.UserSettingsDoc{}, err
	}
	return firstDoc(r.Rester, raw, id)
}

// GetUserSettings returns the settings of a consumer, limited to fields
// when given.
func (r *UserSettingsRester) GetUserSettings(ctx context.Context, consumerID string, fields ...string) (schema.UserSettingsDoc, error) {
	id, err := parseConsumerID(consumerID)
	if err != nil {
		return schema.UserSettingsDoc{}, err
	}
	return r.GetDataByID(ctx, id, fields...)
}

func parseConsumerID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: consumer id %q is not a UUID", ErrInvalidID, raw)
	}
	return id.String(), nil
}

// GeneralStoreRester stores free-form items grouped by kind.
type GeneralStoreRester struct {
	*Rester[schema.GeneralStoreDoc]
}

// AddItem stores an item of the given kind and returns it with its
// submission id.
func (r *GeneralStoreRester) AddItem(ctx context.Context, kind, markdown string, meta map[string]any) (schema.GeneralStoreDoc, error) {
	if kind == "" {
		return schema.GeneralStoreDoc{}, fmt.Errorf("mpapi: kind is required")
	}
	params := url.Values{"kind": {kind}}
	if markdown != "" {
		params.Set("markdown", markdown)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := r.post(ctx, "", params, meta)
	if err != nil {
		return schema.GeneralStoreDoc{}, err
	}
	return firstDoc(r.Rester, raw, kind)
}

// GetItems returns every stored item of kind.
func (r *GeneralStoreRester) GetItems(ctx context.Context, kind string, opts ...SearchOption) ([]schema.GeneralStoreDoc, error) {
	if kind == "" {
		return nil, fmt.Errorf("mpapi: kind is required")
	}
	return r.Search(ctx, Query{"kind": kind}, opts...)
}

// MPCompleteRester submits structures for calculation.
type MPCompleteRester struct {
	*Rester[schema.MPCompleteDoc]
}

// Submit queues a structure for calculation under the submitter's public
// name and email.
func (r *MPCompleteRester) Submit(ctx context.Context, s schema.Structure, publicName, publicEmail string) (schema.MPCompleteDoc, error) {
	if publicName == "" || publicEmail == "" {
		return schema.MPCompleteDoc{}, fmt.Errorf("mpapi: public name and email are required")
	}
	if len(s.Sites) == 0 {
		return schema.MPCompleteDoc{}, fmt.Errorf("mpapi: structure has no sites")
	}
	params := url.Values{"public_name": {publicName}, "public_email": {publicEmail}}
	raw, err := r.post(ctx, "", params, s)
	if err != nil {
		return schema.MPCompleteDoc{}, err
	}
	return firstDoc(r.Rester, raw, publicName)
}

// GetSubmissions returns the submissions of a submitter.
func (r *MPCompleteRester) GetSubmissions(ctx context.Context, publicName, publicEmail string, opts ...SearchOption) ([]schema.MPCompleteDoc, error) {
	return r.Search(ctx, Query{"public_name": publicName, "public_email": publicEmail}, opts...)
}

func firstDoc[T any](r *Rester[T], raw []json.RawMessage, id string) (T, error) {
	var zero T
	docs, err := r.decode(raw, nil)
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, &NoResultError{ID: id}
	}
	return docs[0], nil
}
