package mpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// Document is an untyped API document.
type Document = map[string]any

// Rester queries one API route and decodes its documents into T.
// T is a pkg/schema document type, or Document for untyped access.
type Rester[T any] struct {
	client    *Client
	suffix    string
	key       string
	fields    []string
	chunkSize int
	meta      *schema.Meta
}

// NewRester creates a rester for the route suffix, e.g. "summary" or
// "tasks/deprecation". The primary key and available fields come from T.
func NewRester[T any](client *Client, suffix string) *Rester[T] {
	r := &Rester[T]{
		client:    client,
		suffix:    strings.Trim(suffix, "/"),
		chunkSize: DefaultChunkSize,
	}
	if m, err := schema.DescribeType(reflect.TypeFor[T]()); err == nil {
		r.meta = m
		r.key = m.Key()
		r.fields = m.Fields()
	}
	return r
}

// withKey overrides the primary key, for untyped resters.
func (r *Rester[T]) withKey(key string) *Rester[T] {
	r.key = key
	return r
}

// withChunkSize overrides the default chunk size of Search.
func (r *Rester[T]) withChunkSize(n int) *Rester[T] {
	r.chunkSize = n
	return r
}

// Suffix returns the route suffix.
func (r *Rester[T]) Suffix() string { return r.suffix }

// PrimaryKey returns the field identifying documents of the route.
func (r *Rester[T]) PrimaryKey() string { return r.key }

// AvailableFields returns the fields documents of the route may carry.
func (r *Rester[T]) AvailableFields() []string {
	return append([]string(nil), r.fields...)
}

// Search retrieves every document matching q, splitting and paginating
// the query as needed.
func (r *Rester[T]) Search(ctx context.Context, q Query, opts ...SearchOption) ([]T, error) {
	sc := searchConfig{chunkSize: r.chunkSize, allFields: true}
	for _, o := range opts {
		o(&sc)
	}
	if sc.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be greater than zero", ErrInvalidChunk)
	}
	if sc.chunksSet && sc.numChunks <= 0 {
		return nil, fmt.Errorf("%w: number of chunks must be greater than zero", ErrInvalidChunk)
	}

	params, err := q.Encode()
	if err != nil {
		return nil, err
	}
	r.project(params, sc.fields, sc.allFields)
	if len(sc.sortFields) > 0 {
		params.Set("_sort_fields", strings.Join(sc.sortFields, ","))
	}

	raw, err := r.client.fetchAll(ctx, r.suffix, params, sc.chunkSize, sc.numChunks)
	if err != nil {
		return nil, err
	}
	return r.decode(raw, sc.fields)
}

// GetDataByID returns the document whose primary key is id. On
// material_id routes a failed lookup is retried with the material id a task
// id belongs to.
func (r *Rester[T]) GetDataByID(ctx context.Context, id string, fields ...string) (T, error) {
	var zero T
	if strings.TrimSpace(id) == "" {
		return zero, fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	if r.key == "material_id" || r.key == "task_id" {
		ids, err := ValidateIDs([]string{id})
		if err != nil {
			return zero, err
		}
		id = ids[0]
	}

	params := url.Values{}
	r.project(params, fields, true)

	p, err := r.client.get(ctx, r.suffix, r.suffix+"/"+url.PathEscape(id)+"/", params)
	if err != nil && r.key == "material_id" {
		resolved, rerr := r.client.materialIDFromTaskID(ctx, id)
		if rerr != nil || resolved == "" || resolved == id {
			return zero, err
		}
		r.client.obs.logger.Debug("retrying lookup with material id",
			zap.String("route", r.suffix), zap.String("task_id", id), zap.String("material_id", resolved))
		id = resolved
		p, err = r.client.get(ctx, r.suffix, r.suffix+"/"+url.PathEscape(id)+"/", params)
	}
	if err != nil {
		return zero, err
	}

	switch len(p.Data) {
	case 0:
		return zero, &NoResultError{ID: id}
	case 1:
	default:
		return zero, fmt.Errorf("mpapi: multiple records for %s = %s", r.key, id)
	}
	docs, err := r.decode(p.Data, fields)
	if err != nil {
		return zero, err
	}
	return docs[0], nil
}

// Count returns the number of documents matching q.
func (r *Rester[T]) Count(ctx context.Context, q Query) (int, error) {
	params, err := q.Encode()
	if err != nil {
		return 0, err
	}
	params.Set("_limit", "1")
	p, err := r.client.get(ctx, r.suffix, r.suffix+"/", params)
	if err != nil {
		return 0, err
	}
	return p.Meta.TotalDoc, nil
}

// post submits body to the route and returns the echoed documents.
func (r *Rester[T]) post(ctx context.Context, sub string, params url.Values, body any) ([]json.RawMessage, error) {
	path := r.suffix + "/"
	if sub != "" {
		path += strings.Trim(sub, "/") + "/"
	}
	p, err := r.client.post(ctx, strings.TrimSuffix(path, "/"), path, params, body)
	if err != nil {
		return nil, err
	}
	return p.Data, nil
}

// single runs one unpaginated request against the route or one of its
// sub-routes and decodes every returned document.
func (r *Rester[T]) single(ctx context.Context, sub string, params url.Values) ([]T, Meta, error) {
	path := r.suffix + "/"
	if sub != "" {
		path += strings.Trim(sub, "/") + "/"
	}
	p, err := r.client.get(ctx, strings.TrimSuffix(path, "/"), path, params)
	if err != nil {
		return nil, Meta{}, err
	}
	docs, err := r.decode(p.Data, nil)
	if err != nil {
		return nil, Meta{}, err
	}
	return docs, p.Meta, nil
}

func (r *Rester[T]) project(params url.Values, fields []string, all bool) {
	switch {
	case len(fields) > 0:
		params.Set("_fields", strings.Join(fields, ","))
	case all:
		params.Set("_all_fields", "true")
	}
}

func (r *Rester[T]) decode(raw []json.RawMessage, fields []string) ([]T, error) {
	out := make([]T, 0, len(raw))
	check := r.client.validate && r.meta != nil
	var only []string
	if len(fields) > 0 {
		only = fields
	}
	for i, msg := range raw {
		var doc T
		if err := json.Unmarshal(msg, &doc); err != nil {
			return nil, fmt.Errorf("mpapi: decode %s document %d: %w", r.suffix, i, err)
		}
		if check {
			if err := r.meta.Validate(doc, only); err != nil {
				return nil, fmt.Errorf("mpapi: %s document %d: %w", r.suffix, i, err)
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

// materialIDFromTaskID returns the material a task id was blessed into.
func (c *Client) materialIDFromTaskID(ctx context.Context, taskID string) (string, error) {
	params := url.Values{
		"task_ids": {taskID},
		"_fields":  {"material_id"},
		"_limit":   {"2"},
	}
	p, err := c.get(ctx, "materials", "materials/", params)
	if err != nil {
		return "", err
	}
	switch len(p.Data) {
	case 0:
		return "", &NoResultError{ID: taskID}
	case 1:
	default:
		return "", fmt.Errorf("mpapi: task %s belongs to %d materials", taskID, len(p.Data))
	}
	var doc struct {
		MaterialID string `json:"material_id"`
	}
	if err := json.Unmarshal(p.Data[0], &doc); err != nil {
		return "", fmt.Errorf("mpapi: decode material id: %w", err)
	}
	return doc.MaterialID, nil
}
