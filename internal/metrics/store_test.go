package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveStore_StatusLabel(t *testing.T) {
	ObserveStore("summary", "find", 0.01, nil)
	ObserveStore("summary", "find", 0.02, errors.New("boom"))

	if v := testutil.ToFloat64(StoreRequestsTotal.WithLabelValues("summary", "find", "ok")); v < 1 {
		t.Errorf("expected ok counter >= 1, got %f", v)
	}
	if v := testutil.ToFloat64(StoreRequestsTotal.WithLabelValues("summary", "find", "error")); v < 1 {
		t.Errorf("expected error counter >= 1, got %f", v)
	}
	if testutil.CollectAndCount(StoreRequestDuration) == 0 {
		t.Error("expected store_request_duration_seconds to have observations")
	}
}

func TestRegisterStoreMetrics_Idempotent(t *testing.T) {
	RegisterStoreMetrics()
	RegisterStoreMetrics()
}
