package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// requestsWithStatus sums mpapi_http_requests_total over every series with the status label.
func requestsWithStatus(t *testing.T, status string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var total float64
	for _, f := range families {
		if f.GetName() != "mpapi_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestNewRouter_CountsRejectedRequests(t *testing.T) {
	r := newRouter(zap.NewNop(), []string{"secret"})
	r.Get("/materials/summary", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := requestsWithStatus(t, "403")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/materials/summary", http.NoBody))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusForbidden)
	}
	if got := requestsWithStatus(t, "403") - before; got != 1 {
		t.Errorf("expected the rejected request to be counted once, got %f", got)
	}
}

func TestNewRouter_SetsRequestID(t *testing.T) {
	r := newRouter(zap.NewNop(), nil)
	r.Get("/heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/heartbeat", http.NoBody))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
