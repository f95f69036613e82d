package mpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// clientMetrics holds prometheus metrics registered for the client.
type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpapi",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total API requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mpapi",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpapi",
			Subsystem: "client",
			Name:      "retries_total",
			Help:      "Total retried API requests by host.",
		}, []string{"host"}),
	}
	if err := registerOrReuse(reg, &m.requests); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.retries); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("mpapi: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("mpapi: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for client requests.
type observer struct {
	logger  *zap.Logger
	metrics *clientMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one request. code is 0 when no response was received.
func (o *observer) observe(route string, code int, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		o.metrics.duration.WithLabelValues(route).Observe(dur.Seconds())
	}

	if err != nil {
		o.logger.Warn("request failed",
			zap.String("route", route),
			zap.Int("status", code),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("request completed",
		zap.String("route", route),
		zap.Duration("duration", dur),
	)
}

func (o *observer) retry(host string, attempt int, delay time.Duration) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.retries.WithLabelValues(host).Inc()
	}
	o.logger.Info("retrying request",
		zap.String("host", host),
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
	)
}
