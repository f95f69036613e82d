package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi/internal/blob"
	"github.com/kailas-cloud/mpapi/internal/config"
	dbMongo "github.com/kailas-cloud/mpapi/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/mpapi/internal/db/redis"
	"github.com/kailas-cloud/mpapi/internal/endpoint"
	logpkg "github.com/kailas-cloud/mpapi/internal/logger"
	"github.com/kailas-cloud/mpapi/internal/metrics"
	"github.com/kailas-cloud/mpapi/internal/otel"
	"github.com/kailas-cloud/mpapi/internal/repository/respcache"
	chiTransport "github.com/kailas-cloud/mpapi/internal/transport/chi"
	healthuc "github.com/kailas-cloud/mpapi/internal/usecase/health"
	"github.com/kailas-cloud/mpapi/internal/usecase/resource"
	"github.com/kailas-cloud/mpapi/internal/version"
)

// consumerCollections hold consumer submissions. They live in the consumer
// database and are never cached.
var consumerCollections = [][2]string{
	{"user_settings", "user_settings"},
	{"general_store", "general_store"},
	{"mpcomplete", "mpcomplete"},
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Mongo.DBVersion != "" {
		version.DBVersion = cfg.Mongo.DBVersion
	}

	logger.Info("Starting mpapi server",
		zap.String("version", version.Short()),
		zap.String("commit", version.Commit),
		zap.String("db_version", version.DBVersion),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
		zap.Bool("objects_enabled", cfg.Objects.Enabled()),
	)

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing.Enabled, cfg.Tracing.ServiceName, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Consumer collections are routed to their own database.
	databases := make(map[string]string, len(consumerCollections))
	bypass := make([]string, 0, len(consumerCollections))
	for _, c := range consumerCollections {
		name := cfg.Collection(c[0], c[1])
		databases[name] = cfg.Mongo.ConsumerDatabase
		bypass = append(bypass, name)
	}

	mongoStore, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:       cfg.Mongo.URI,
		Database:  cfg.Mongo.Database,
		Databases: databases,
		Timeout:   time.Duration(cfg.Mongo.QueryTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer func() { _ = mongoStore.Close(context.Background()) }()

	if err := mongoStore.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register store metrics explicitly (no init())
	metrics.RegisterStoreMetrics()

	healthSvc := healthuc.New(mongoStore)

	// Pass nil interfaces (not typed nil pointers!) for disabled backends.
	// Go gotcha: (*blob.Store)(nil) wrapped in resource.ObjectStore != nil.
	var store resource.Store = mongoStore
	if cfg.Cache.Enabled() {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			ClientName: "mpapi",
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer redisStore.Close()

		cache := respcache.New(mongoStore, redisStore, respcache.Config{
			Prefix: cfg.Cache.KeyPrefix,
			TTL:    time.Duration(cfg.Cache.TTLSec) * time.Second,
			Bypass: bypass,
		}, metrics.ResponseCacheTotal, logger)
		if _, err := cache.SyncVersion(ctx, version.DBVersion); err != nil {
			logger.Warn("Failed to sync response cache version", zap.Error(err))
		}
		store = cache
		healthSvc.WithComponent("cache", redisStore)
		logger.Info("Response cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	var objects resource.ObjectStore
	if cfg.Objects.Enabled() {
		blobStore, err := blob.New(blob.Config{
			Endpoint:   cfg.Objects.Endpoint,
			AccessKey:  cfg.Objects.AccessKey,
			SecretKey:  cfg.Objects.SecretKey,
			UseSSL:     cfg.Objects.UseSSL,
			Region:     cfg.Objects.Region,
			Compressed: cfg.Objects.Compress,
			Suffix:     cfg.Objects.Suffix,
		})
		if err != nil {
			logger.Fatal("Failed to create object store", zap.Error(err))
		}
		objects = blobStore
		healthSvc.WithComponent("objects", blobStore)
		logger.Info("Object storage enabled", zap.String("endpoint", cfg.Objects.Endpoint))
	}

	routes := endpoint.Routes(endpoint.Deps{
		Store:        store,
		Objects:      objects,
		Collection:   cfg.Collection,
		Bucket:       cfg.Bucket,
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	})

	if cfg.Mongo.EnsureIndexes {
		for coll, indexes := range endpoint.Collections(routes) {
			if err := mongoStore.EnsureIndexes(ctx, coll, indexes); err != nil {
				logger.Warn("Failed to ensure indexes", zap.String("collection", coll), zap.Error(err))
			}
		}
		logger.Info("Indexes ensured")
	}

	server := chiTransport.NewServer(routes, healthSvc, logger)

	r := newRouter(logger, cfg.Auth.APIKeys)
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "mpapi"),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Int("routes", len(routes)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"detail": "Internal Server Error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// newRouter builds the router with the middleware chain. Metrics wrap
// authentication so rejected requests are counted.
func newRouter(logger *zap.Logger, apiKeys []string) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(jsonRecoverer(logger))
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Use(chiTransport.APIKeyMiddleware(apiKeys))
	return r
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			route := metrics.RoutePattern(r)
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("resource", chiTransport.ResourceName(route)),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("bytes", ww.BytesWritten()),
			)
		})
	}
}
