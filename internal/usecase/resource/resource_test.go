package resource

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/domain/hint"
	"github.com/kailas-cloud/mpapi/internal/query"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

func summaryResource(store Store) *ReadOnly {
	return NewReadOnly(store, Config{
		Collection: "summary",
		Key:        "material_id",
		Operators: []query.Operator{
			query.Formula{},
			query.NewNumeric("band_gap"),
			query.Deprecation{},
			query.NewPagination(0, 0),
		},
		Fields: query.NewSparseFields(schema.Fields[schema.SummaryDoc](), []string{"material_id"}),
		Hint:   hint.Summary(),
	})
}

func TestSearch_MergesOperators(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"material_id": "mp-1"}}, total: 42}
	r := summaryResource(store)

	params := url.Values{"formula": {"Fe2O3"}, "band_gap_min": {"1"}, "limit": {"5"}}
	resp, err := r.Search(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sp := store.queried[0]
	want := domain.Criteria{
		"formula_pretty": "Fe2O3",
		"band_gap":       map[string]any{"$gte": 1.0},
		"deprecated":     false,
	}
	if !reflect.DeepEqual(sp.Criteria, want) {
		t.Errorf("expected criteria %v, got %v", want, sp.Criteria)
	}
	if sp.Limit != 5 {
		t.Errorf("expected limit 5, got %d", sp.Limit)
	}
	if !reflect.DeepEqual(sp.Properties, []string{"material_id"}) {
		t.Errorf("expected default projection, got %v", sp.Properties)
	}
	if resp.Meta["total_doc"] != 42 {
		t.Errorf("expected total_doc 42, got %v", resp.Meta["total_doc"])
	}
	if resp.Meta["max_limit"] != query.MaxLimit {
		t.Errorf("expected max_limit in meta, got %v", resp.Meta)
	}
	if _, ok := resp.Meta["default_fields"]; !ok {
		t.Errorf("expected default_fields in meta, got %v", resp.Meta)
	}
	if len(resp.Data) != 1 {
		t.Errorf("expected 1 document, got %d", len(resp.Data))
	}
}

func TestSearch_AppliesHint(t *testing.T) {
	store := &mockStore{}
	r := summaryResource(store)

	if _, err := r.Search(context.Background(), url.Values{"formula": {"Fe-*"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(store.queried[0].Hint, domain.Hint{"nelements": 1}) {
		t.Errorf("expected nelements hint, got %v", store.queried[0].Hint)
	}
	if !reflect.DeepEqual(store.hints[0], domain.Hint{"nelements": 1}) {
		t.Errorf("expected count to share the hint, got %v", store.hints[0])
	}
}

func TestSearch_UnknownParam(t *testing.T) {
	r := summaryResource(&mockStore{})
	_, err := r.Search(context.Background(), url.Values{"colour": {"blue"}})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearch_Disabled(t *testing.T) {
	r := NewReadOnly(&mockStore{}, Config{Collection: "similarity", Key: "material_id", DisableSearch: true})
	if _, err := r.Search(context.Background(), nil); !errors.Is(err, domain.ErrSearchDisabled) {
		t.Fatalf("expected ErrSearchDisabled, got %v", err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	r := summaryResource(&mockStore{err: errors.New("conn reset")})
	if _, err := r.Search(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_Pipeline(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"formula_pretty": "SiO2"}, {"formula_pretty": "SiO"}}}
	r := NewAggregation(store, "formula_autocomplete", query.NewFormulaAutocomplete())

	resp, err := r.Search(context.Background(), url.Values{"formula": {"SiO2"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.pipelines) != 1 || len(store.queried) != 0 {
		t.Fatalf("expected a single aggregation, got %d pipelines %d queries", len(store.pipelines), len(store.queried))
	}
	if resp.Meta["total_doc"] != 2 {
		t.Errorf("expected total_doc from result length, got %v", resp.Meta["total_doc"])
	}
	if r.GetByKeyEnabled() {
		t.Error("aggregation resources must not serve get-by-key")
	}
}

func TestSearch_PostProcessMeta(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"total_doc": int32(7), "doi": "10.1/x"}}}
	r := NewAggregation(store, "synth_descriptions", query.SynthesisSearch{})

	resp, err := r.Search(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Meta["total_doc"] != 7 {
		t.Errorf("expected total_doc from post-processing, got %v", resp.Meta["total_doc"])
	}
}

func TestGetByKey(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"material_id": "mp-149"}}}
	r := summaryResource(store)

	resp, err := r.GetByKey(context.Background(), "mp-149", url.Values{"fields": {"material_id,band_gap"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sp := store.queried[0]
	if !reflect.DeepEqual(sp.Criteria, domain.Criteria{"material_id": "mp-149"}) {
		t.Errorf("unexpected criteria %v", sp.Criteria)
	}
	if !reflect.DeepEqual(sp.Properties, []string{"material_id", "band_gap"}) {
		t.Errorf("unexpected projection %v", sp.Properties)
	}
	if len(resp.Data) != 1 {
		t.Errorf("expected 1 document, got %d", len(resp.Data))
	}

	if _, err := r.GetByKey(context.Background(), "mp-149", url.Values{"formula": {"Si"}}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected search parameters to be rejected, got %v", err)
	}
}

func TestGetByKey_NotFound(t *testing.T) {
	r := summaryResource(&mockStore{})
	_, err := r.GetByKey(context.Background(), "mp-1", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "Item with material_id = mp-1 not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIndexes(t *testing.T) {
	r := summaryResource(&mockStore{})
	got := r.Indexes()
	if got[0] != (domain.Index{Key: "material_id"}) {
		t.Errorf("expected key index first, got %v", got)
	}
	seen := map[string]bool{}
	for _, i := range got {
		if seen[i.Key] {
			t.Errorf("duplicate index %s", i.Key)
		}
		seen[i.Key] = true
	}
	if !seen["formula_pretty"] || !seen["deprecated"] {
		t.Errorf("expected operator indexes, got %v", got)
	}
}

func TestSubmit(t *testing.T) {
	store := &mockStore{}
	s := NewSubmission(store, SubmissionConfig{
		Config:       Config{Collection: "mpcomplete", Key: "submission_id", Operators: query.MPCompleteGet()},
		Post:         query.MPCompletePost{},
		CalculateID:  true,
		DefaultState: string(schema.StateSubmitted),
	})
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.newID = func() string { return "sub-1" }

	body := []byte(`{"lattice":{"matrix":[[1,0,0],[0,1,0],[0,0,1]]},"sites":[{"species":[{"element":"Si","occu":1}],"abc":[0,0,0]}]}`)
	params := url.Values{"public_name": {"Ada"}, "public_email": {"ada@example.com"}}
	resp, err := s.Submit(context.Background(), params, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := store.upserted[0]
	if doc["submission_id"] != "sub-1" || doc["state"] != "SUBMITTED" || doc["last_updated"] != fixed {
		t.Errorf("unexpected stamped document %v", doc)
	}
	if resp.Data[0]["public_name"] != "Ada" {
		t.Errorf("expected echoed document, got %v", resp.Data)
	}

	if _, err := s.Submit(context.Background(), url.Values{"public_name": {"Ada"}, "extra": {"x"}}, body); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected unknown parameter error, got %v", err)
	}
}

func TestSubmit_KeyFromDocument(t *testing.T) {
	store := &mockStore{}
	s := NewSubmission(store, SubmissionConfig{
		Config: Config{
			Collection:    "user_settings",
			Key:           "consumer_id",
			Operators:     []query.Operator{query.UserSettingsGet{}},
			DisableSearch: true,
		},
		Post: query.UserSettingsPost{},
	})
	id := "123e4567-e89b-12d3-a456-426614174000"
	if _, err := s.Submit(context.Background(), url.Values{"consumer_id": {id}}, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.upserted[0]["consumer_id"] != id {
		t.Errorf("expected consumer_id key, got %v", store.upserted[0])
	}
	if _, ok := store.upserted[0]["state"]; ok {
		t.Error("expected no state without a default")
	}
}

func objectResource(store Store, objects ObjectStore) *Object {
	return NewObject(store, objects, ObjectConfig{
		Config: Config{
			Collection:      "bandstructure_index",
			Operators:       []query.Operator{query.Object{}},
			Fields:          query.NewSparseFields([]string{"task_id", "fs_id", "last_updated", "data"}, nil),
			DisableGetByKey: true,
		},
		Bucket: "bandstructures",
	})
}

func TestObject_AttachesPayload(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"task_id": "mp-1", "fs_id": "abc"}}, total: 1}
	objects := &mockObjects{data: map[string]any{"abc": map[string]any{"bands": 3.0}}}

	resp, err := objectResource(store, objects).Search(context.Background(), url.Values{"task_id": {"mp-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Data[0]["data"], map[string]any{"bands": 3.0}) {
		t.Errorf("expected payload attached, got %v", resp.Data[0])
	}
	if !reflect.DeepEqual(objects.keys, []string{"abc"}) {
		t.Errorf("expected fs_id lookup, got %v", objects.keys)
	}
}

func TestObject_SkipsPayloadWhenNotProjected(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"task_id": "mp-1"}}, total: 1}
	objects := &mockObjects{}

	_, err := objectResource(store, objects).Search(context.Background(),
		url.Values{"task_id": {"mp-1"}, "fields": {"task_id"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects.keys) != 0 {
		t.Errorf("expected no object fetch, got %v", objects.keys)
	}
}

func TestObject_Unavailable(t *testing.T) {
	store := &mockStore{docs: []domain.Document{{"task_id": "mp-1"}}, total: 1}
	_, err := objectResource(store, nil).Search(context.Background(), url.Values{"task_id": {"mp-1"}})
	if !errors.Is(err, domain.ErrObjectStoreUnavailable) {
		t.Fatalf("expected ErrObjectStoreUnavailable, got %v", err)
	}
}

func TestSearch_NormalizesClientParams(t *testing.T) {
	store := &mockStore{}
	r := NewAggregation(store, "robocrys", query.Keywords{})

	params := url.Values{"keywords": {"cubic"}, "_limit": {"5"}, "_skip": {"10"}, "_all_fields": {"true"}}
	if _, err := r.Search(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.pipelines) != 1 {
		t.Fatalf("expected one aggregation, got %d", len(store.pipelines))
	}

	if _, err := r.Search(context.Background(), url.Values{"keywords": {"cubic"}, "_colour": {"x"}}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected unknown underscored parameter to be rejected, got %v", err)
	}
}
