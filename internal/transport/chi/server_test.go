package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/endpoint"
	healthuc "github.com/kailas-cloud/mpapi/internal/usecase/health"
	"github.com/kailas-cloud/mpapi/internal/usecase/resource"
)

// --- Mocks ---

type mockResource struct {
	key       string
	noSearch  bool
	noGet     bool
	docs      []domain.Document
	err       error
	gotKey    string
	gotParams url.Values
}

func (m *mockResource) Collection() string      { return "mock" }
func (m *mockResource) Key() string             { return m.key }
func (m *mockResource) SearchEnabled() bool     { return !m.noSearch }
func (m *mockResource) GetByKeyEnabled() bool   { return !m.noGet }
func (m *mockResource) Indexes() []domain.Index { return nil }

func (m *mockResource) Search(_ context.Context, params url.Values) (resource.Response, error) {
	m.gotParams = params
	if m.err != nil {
		return resource.Response{}, m.err
	}
	return resource.Response{Data: m.docs, Meta: map[string]any{"total_doc": len(m.docs)}}, nil
}

func (m *mockResource) GetByKey(_ context.Context, key string, params url.Values) (resource.Response, error) {
	m.gotKey = key
	m.gotParams = params
	if m.err != nil {
		return resource.Response{}, m.err
	}
	return resource.Response{Data: []domain.Document{{m.key: key}}, Meta: map[string]any{"total_doc": 1}}, nil
}

type mockPoster struct {
	mockResource
	body []byte
}

func (m *mockPoster) Submit(_ context.Context, params url.Values, body []byte) (resource.Response, error) {
	m.gotParams = params
	m.body = body
	if m.err != nil {
		return resource.Response{}, m.err
	}
	return resource.Response{Data: []domain.Document{{"submission_id": "sub-1"}}}, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

// --- Helpers ---

func newRouter(routes []endpoint.Route, dbErr error) http.Handler {
	health := healthuc.New(&mockPinger{err: dbErr})
	s := NewServer(routes, health, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, target, err, rr.Body.String())
	}
	return rr, out
}

// --- Tests ---

func TestSearch_Envelope(t *testing.T) {
	res := &mockResource{key: "material_id", docs: []domain.Document{{"material_id": "mp-1"}}}
	h := newRouter([]endpoint.Route{{Path: "summary", Resource: res}}, nil)

	for _, target := range []string{"/summary/?formula=Fe2O3", "/summary?formula=Fe2O3"} {
		rr, body := do(t, h, http.MethodGet, target, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: got %d, want 200", target, rr.Code)
		}
		data, ok := body["data"].([]any)
		if !ok || len(data) != 1 {
			t.Errorf("%s: unexpected data %v", target, body["data"])
		}
		if meta, ok := body["meta"].(map[string]any); !ok || meta["total_doc"] != 1.0 {
			t.Errorf("%s: unexpected meta %v", target, body["meta"])
		}
		if res.gotParams.Get("formula") != "Fe2O3" {
			t.Errorf("%s: params not forwarded, got %v", target, res.gotParams)
		}
	}
}

func TestSearch_EmptyDataIsList(t *testing.T) {
	h := newRouter([]endpoint.Route{{Path: "summary", Resource: &mockResource{key: "material_id"}}}, nil)
	rr, _ := do(t, h, http.MethodGet, "/summary/", "")
	if !strings.Contains(rr.Body.String(), `"data":[]`) {
		t.Errorf("expected empty list, got %s", rr.Body.String())
	}
}

func TestGetByKey(t *testing.T) {
	res := &mockResource{key: "material_id"}
	h := newRouter([]endpoint.Route{{Path: "summary", Resource: res}}, nil)

	rr, body := do(t, h, http.MethodGet, "/summary/mp-149/?fields=material_id", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if res.gotKey != "mp-149" {
		t.Errorf("expected key mp-149, got %q", res.gotKey)
	}
	if res.gotParams.Get("fields") != "material_id" {
		t.Errorf("expected fields forwarded, got %v", res.gotParams)
	}
	if len(body["data"].([]any)) != 1 {
		t.Errorf("unexpected data %v", body["data"])
	}
}

func TestSubPathPrecedesKey(t *testing.T) {
	stats := &mockResource{noGet: true, docs: []domain.Document{{"field": "band_gap"}}}
	summary := &mockResource{key: "material_id"}
	h := newRouter([]endpoint.Route{
		{Path: "summary/stats", Resource: stats},
		{Path: "summary", Resource: summary},
	}, nil)

	rr, _ := do(t, h, http.MethodGet, "/summary/stats/?field=band_gap", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if stats.gotParams.Get("field") != "band_gap" || summary.gotKey != "" {
		t.Errorf("expected the stats route, got key %q", summary.gotKey)
	}
}

func TestDisabledRoutes_NotFound(t *testing.T) {
	res := &mockResource{key: "material_id", noSearch: true, noGet: true}
	h := newRouter([]endpoint.Route{{Path: "similarity", Resource: res}}, nil)

	for _, target := range []string{"/similarity/", "/similarity/mp-1/", "/nowhere/"} {
		rr, body := do(t, h, http.MethodGet, target, "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404", target, rr.Code)
		}
		if body["detail"] != "Not Found" {
			t.Errorf("%s: unexpected detail %v", target, body["detail"])
		}
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", domain.NewNotFound("material_id", "mp-1"), http.StatusNotFound, "Item with material_id = mp-1 not found"},
		{"wrapped not found", fmt.Errorf("get summary: %w", domain.NewNotFound("material_id", "mp-1")),
			http.StatusNotFound, "Item with material_id = mp-1 not found"},
		{"query error", domain.NewQueryError("band_gap_min", "must be a number"), http.StatusBadRequest,
			"band_gap_min: must be a number"},
		{"invalid formula", fmt.Errorf("%w: Xx2", domain.ErrInvalidFormula), http.StatusBadRequest, "invalid formula: Xx2"},
		{"validation", fmt.Errorf("%w: missing consumer_id", domain.ErrValidation), http.StatusBadRequest,
			"validation failed: missing consumer_id"},
		{"search disabled", domain.ErrSearchDisabled, http.StatusNotFound, "Not Found"},
		{"object storage", fmt.Errorf("fetch: %w", domain.ErrObjectStoreUnavailable), http.StatusServiceUnavailable,
			"Object storage is not configured"},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter([]endpoint.Route{{Path: "summary", Resource: &mockResource{key: "material_id", err: tt.err}}}, nil)
			rr, body := do(t, h, http.MethodGet, "/summary/", "")
			if rr.Code != tt.status {
				t.Errorf("got %d, want %d", rr.Code, tt.status)
			}
			if body["detail"] != tt.detail {
				t.Errorf("got detail %q, want %q", body["detail"], tt.detail)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	p := &mockPoster{mockResource: mockResource{key: "submission_id"}}
	h := newRouter([]endpoint.Route{{Path: "mpcomplete", Resource: p}}, nil)

	rr, body := do(t, h, http.MethodPost, "/mpcomplete/?public_name=Ada", `{"lattice":{}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if string(p.body) != `{"lattice":{}}` || p.gotParams.Get("public_name") != "Ada" {
		t.Errorf("unexpected submission %q %v", p.body, p.gotParams)
	}
	if body["data"].([]any)[0].(map[string]any)["submission_id"] != "sub-1" {
		t.Errorf("unexpected data %v", body["data"])
	}
}

func TestSubmit_NotMountedForReadOnly(t *testing.T) {
	h := newRouter([]endpoint.Route{{Path: "summary", Resource: &mockResource{key: "material_id"}}}, nil)
	rr, _ := do(t, h, http.MethodPost, "/summary/", `{}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("got %d, want 405", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rr, body := do(t, newRouter(nil, nil), http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthy: got %d %v", rr.Code, body)
	}

	rr, body = do(t, newRouter(nil, errors.New("down")), http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable || body["status"] != "error" {
		t.Errorf("unhealthy: got %d %v", rr.Code, body)
	}
	if checks, _ := body["checks"].(map[string]any); checks["database"] != "error" {
		t.Errorf("expected database check to fail, got %v", body["checks"])
	}
}

func TestHeartbeat(t *testing.T) {
	rr, body := do(t, newRouter(nil, nil), http.MethodGet, "/heartbeat", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if body["status"] != "OK" || body["time"] != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected heartbeat %v", body)
	}
	if _, ok := body["db_version"]; !ok {
		t.Errorf("expected db_version, got %v", body)
	}
}

func TestResourceName(t *testing.T) {
	tests := map[string]string{
		"/summary/":       "summary",
		"/summary":        "summary",
		"/summary/{key}/": "summary",
		"/summary/{key}":  "summary",
		"/electronic_structure/bandstructure/object/": "electronic_structure/bandstructure/object",
		"/health":                                     "health",
		"":                                            "",
	}
	for in, want := range tests {
		if got := ResourceName(in); got != want {
			t.Errorf("ResourceName(%q) = %q, want %q", in, got, want)
		}
	}
}
