package health

import (
	"context"
	"sort"
	"sync"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the document store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       Pinger
	optional map[string]Pinger
}

// New creates a Service over the document store.
func New(db Pinger) *Service {
	return &Service{db: db, optional: map[string]Pinger{}}
}

// WithComponent adds an optional backend, such as the cache or object
// storage. A nil pinger is ignored.
func (s *Service) WithComponent(name string, p Pinger) *Service {
	if p != nil {
		s.optional[name] = p
	}
	return s
}

// Components lists the checked component names.
func (s *Service) Components() []string {
	out := []string{"database"}
	for name := range s.optional {
		out = append(out, name)
	}
	sort.Strings(out[1:])
	return out
}

// Check pings every component concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.optional)+1)
	)
	run := func(name string, p Pinger) {
		defer wg.Done()
		res := CheckOK
		if err := p.Ping(ctx); err != nil {
			res = CheckError
		}
		mu.Lock()
		checks[name] = res
		mu.Unlock()
	}

	wg.Add(1 + len(s.optional))
	go run("database", s.db)
	for name, p := range s.optional {
		go run(name, p)
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
