package mpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

// --- Fake API ---

// fakeAPI serves the response envelope over an in-memory route table and
// records every request.
type fakeAPI struct {
	t      *testing.T
	srv    *httptest.Server
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	reqs   []*http.Request
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(path string, h http.HandlerFunc) {
	f.routes[path] = h
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.reqs = append(f.reqs, r.Clone(r.Context()))
	f.mu.Unlock()

	if r.Header.Get("x-api-key") != testAPIKey {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Invalid API key"}`))
		return
	}
	h, ok := f.routes[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, `{"detail":"Not Found: %s"}`, r.URL.Path)
		return
	}
	h(w, r)
}

func (f *fakeAPI) requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reqs)
}

func (f *fakeAPI) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithAPIKey(testAPIKey),
		WithEndpoint(f.srv.URL),
		WithMaxRetries(0),
		WithRequestsPerMinute(600000),
		WithSettingsFile(filepath.Join(t.TempDir(), "missing.yaml")),
		withEnv(func(string) string { return "" }),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func respond(w http.ResponseWriter, docs any, total int) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": docs,
		"meta": map[string]any{"total_doc": total, "api_version": "test"},
	})
}

// paged serves docs honouring _skip and _limit, after keep filters them.
func paged(docs []map[string]any, keep func(r *http.Request, doc map[string]any) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var matched []map[string]any
		for _, d := range docs {
			if keep == nil || keep(r, d) {
				matched = append(matched, d)
			}
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("_skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("_limit"))
		if err != nil || limit <= 0 {
			limit = 1000
		}
		lo := min(skip, len(matched))
		hi := min(lo+limit, len(matched))
		respond(w, matched[lo:hi], len(matched))
	}
}

func materialDocs(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"material_id": fmt.Sprintf("mp-%d", i+1), "formula_pretty": "Si"}
	}
	return out
}

// inList keeps documents whose field is one of the comma-separated values of param.
func inList(param, field string) func(r *http.Request, doc map[string]any) bool {
	return func(r *http.Request, doc map[string]any) bool {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			return true
		}
		v, _ := doc[field].(string)
		return slices.Contains(strings.Split(raw, ","), v)
	}
}
