package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/endpoint"
	logpkg "github.com/kailas-cloud/mpapi/internal/logger"
	"github.com/kailas-cloud/mpapi/internal/metrics"
	healthuc "github.com/kailas-cloud/mpapi/internal/usecase/health"
	"github.com/kailas-cloud/mpapi/internal/usecase/resource"
	"github.com/kailas-cloud/mpapi/internal/version"
)

const maxBodyBytes = 8 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// envelope is the body of every successful resource response.
type envelope struct {
	Data []domain.Document `json:"data"`
	Meta map[string]any    `json:"meta"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// Server serves endpoint routes over chi.
type Server struct {
	routes        []endpoint.Route
	health        *healthuc.Service
	logger        *zap.Logger
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(routes []endpoint.Route, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		routes: routes,
		health: health,
		logger: logger,
		now:    time.Now,
	}
	s.errorHandlers = []errorHandler{
		queryErrorHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrSearchDisabled, http.StatusNotFound),
		sentinelHandler(domain.ErrInvalidFormula, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
		sentinelHandler(domain.ErrUnsupported, http.StatusBadRequest),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict),
		sentinelHandler(domain.ErrObjectStoreUnavailable, http.StatusServiceUnavailable),
	}
	return s
}

// Mount registers the service and resource routes on r.
func (s *Server) Mount(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/heartbeat", s.Heartbeat)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, rt := range s.routes {
		s.mountRoute(r, rt)
	}
}

func (s *Server) mountRoute(r chi.Router, rt endpoint.Route) {
	base := "/" + rt.Path
	res := rt.Resource

	if res.SearchEnabled() {
		search := s.search(rt)
		r.Get(base, search)
		r.Get(base+"/", search)
	}
	if res.GetByKeyEnabled() {
		get := s.getByKey(rt)
		r.Get(base+"/{key}", get)
		r.Get(base+"/{key}/", get)
	}
	if p, ok := res.(endpoint.Poster); ok {
		post := s.submit(rt, p)
		r.Post(base, post)
		r.Post(base+"/", post)
	}
}

func (s *Server) search(rt endpoint.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := rt.Resource.Search(r.Context(), r.URL.Query())
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		s.writeResponse(w, rt, resp)
	}
}

func (s *Server) getByKey(rt endpoint.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		resp, err := rt.Resource.GetByKey(r.Context(), key, r.URL.Query())
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		s.writeResponse(w, rt, resp)
	}
}

func (s *Server) submit(rt endpoint.Route, p endpoint.Poster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		resp, err := p.Submit(r.Context(), r.URL.Query(), body)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		s.writeResponse(w, rt, resp)
	}
}

func (s *Server) writeResponse(w http.ResponseWriter, rt endpoint.Route, resp resource.Response) {
	metrics.ObserveDocuments(rt.Path, len(resp.Data))
	data := resp.Data
	if data == nil {
		data = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, envelope{Data: data, Meta: resp.Meta})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Heartbeat handles GET /heartbeat.
func (s *Server) Heartbeat(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "OK",
		"message":    "API is up and running",
		"version":    version.Version,
		"db_version": version.DBVersion,
		"time":       s.now().UTC().Format(time.RFC3339),
	})
}

// ResourceName turns a route pattern such as /summary/{key}/ into the
// resource it addresses ("summary").
func ResourceName(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/{key}")
	return strings.Trim(pattern, "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// safeDomainMessage returns the innermost client-facing message of err,
// without the wrapping added on the way up from the store.
func safeDomainMessage(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		return qe.Error()
	}
	if errors.Is(err, domain.ErrSearchDisabled) {
		return "Not Found"
	}
	if errors.Is(err, domain.ErrObjectStoreUnavailable) {
		return "Object storage is not configured"
	}
	return err.Error()
}

func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, safeDomainMessage(err))
		return true
	}
}

func queryErrorHandler(w http.ResponseWriter, err error) bool {
	var qe *domain.QueryError
	if !errors.As(err, &qe) {
		return false
	}
	writeError(w, http.StatusBadRequest, qe.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger, ok := logpkg.Lookup(r.Context())
	if !ok {
		logger = s.logger
	}
	logger.Error("request failed", zap.String("route", metrics.RoutePattern(r)), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
