package mpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey      string
	endpoint    string
	noUserAgent bool

	maxRetries     *int
	parallel       int
	requestsPerMin int
	timeout        time.Duration

	httpClient   *http.Client
	settingsPath string
	getenv       func(string) string

	noValidation bool
	tracing      bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sets the API key sent as x-api-key.
// Takes precedence over MP_API_KEY and ~/.pmgrc.yaml.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithEndpoint sets the API base URL. A trailing slash is added if missing.
// Default: https://api.materialsproject.org/.
func WithEndpoint(endpoint string) Option {
	return optionFunc(func(c *clientConfig) {
		c.endpoint = endpoint
	})
}

// WithoutUserAgent omits the mpapi user agent from requests.
func WithoutUserAgent() Option {
	return optionFunc(func(c *clientConfig) {
		c.noUserAgent = true
	})
}

// WithMaxRetries sets how often a rate-limited or failed request is retried.
// Default: 3.
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = &n
	})
}

// WithParallelism sets the number of concurrent requests used by searches.
// Default: 8.
func WithParallelism(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.parallel = n
	})
}

// WithRequestsPerMinute caps the request rate. Default: 200.
func WithRequestsPerMinute(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestsPerMin = n
	})
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the HTTP client. Its transport is wrapped with
// retries and, when enabled, tracing.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithSettingsFile reads persistent settings from path instead of ~/.pmgrc.yaml.
func WithSettingsFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.settingsPath = path
	})
}

// WithoutValidation skips schema validation of received documents.
func WithoutValidation() Option {
	return optionFunc(func(c *clientConfig) {
		c.noValidation = true
	})
}

// WithTracing propagates OpenTelemetry spans over the client transport
// using the global tracer provider.
func WithTracing() Option {
	return optionFunc(func(c *clientConfig) {
		c.tracing = true
	})
}

// WithLogger enables structured logging of retries, query splitting and
// large-query warnings. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (request counts, durations and
// retries) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

func withEnv(getenv func(string) string) Option {
	return optionFunc(func(c *clientConfig) {
		c.getenv = getenv
	})
}
