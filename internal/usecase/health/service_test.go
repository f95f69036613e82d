package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}).
		WithComponent("cache", &mockPinger{}).
		WithComponent("objects", &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "cache", "objects"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}).
		WithComponent("cache", &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_OptionalDown(t *testing.T) {
	svc := New(&mockPinger{}).WithComponent("cache", &mockPinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_NoOptional(t *testing.T) {
	var nilPinger Pinger
	svc := New(&mockPinger{}).WithComponent("cache", nilPinger)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, exists := r.Checks["cache"]; exists {
		t.Error("cache check should not be present when not configured")
	}
	if got := svc.Components(); !reflect.DeepEqual(got, []string{"database"}) {
		t.Errorf("unexpected components %v", got)
	}
}

func TestComponents_Sorted(t *testing.T) {
	svc := New(&mockPinger{}).
		WithComponent("objects", &mockPinger{}).
		WithComponent("cache", &mockPinger{})
	want := []string{"database", "cache", "objects"}
	if got := svc.Components(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
