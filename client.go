package mpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/mpapi/internal/version"
)

const (
	defaultTimeout = 60 * time.Second
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// Meta is the meta block of an API response.
type Meta struct {
	APIVersion    string   `json:"api_version,omitempty"`
	TimeStamp     string   `json:"time_stamp,omitempty"`
	TotalDoc      int      `json:"total_doc"`
	MaxLimit      int      `json:"max_limit,omitempty"`
	DefaultFields []string `json:"default_fields,omitempty"`
}

type page struct {
	Data []json.RawMessage `json:"data"`
	Meta Meta              `json:"meta"`
}

// Heartbeat is the liveness report of the API.
type Heartbeat struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Version   string `json:"version"`
	DBVersion string `json:"db_version"`
	Time      string `json:"time"`
}

// Client is the Materials Project API entry point. It is safe for
// concurrent use.
type Client struct {
	http      *http.Client
	endpoint  string
	apiKey    string
	userAgent string
	parallel  int
	limiter   *rate.Limiter
	validate  bool
	obs       *observer
}

// New creates a Client. It fails with ErrNoAPIKey when no key is found in
// options, environment or settings file.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	set, err := resolve(cfg)
	if err != nil {
		return nil, err
	}
	if set.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoint: set.endpoint,
		apiKey:   set.apiKey,
		parallel: set.parallel,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(set.requestsPerMin)), set.parallel),
		validate: !cfg.noValidation,
		obs:      obs,
	}
	if !cfg.noUserAgent {
		c.userAgent = UserAgent()
	}
	c.http = c.newHTTPClient(cfg, set.maxRetries)

	obs.logger.Debug("mpapi client ready",
		zap.String("endpoint", c.endpoint),
		zap.Int("max_retries", set.maxRetries),
		zap.Int("parallel", c.parallel),
		zap.Int("requests_per_min", set.requestsPerMin),
	)
	return c, nil
}

// UserAgent returns the user agent sent by clients.
func UserAgent() string {
	return fmt.Sprintf("mpapi/%s (Go/%s %s/%s)", version.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func (c *Client) newHTTPClient(cfg *clientConfig, maxRetries int) *http.Client {
	hc := &http.Client{Timeout: defaultTimeout}
	if cfg.httpClient != nil {
		clone := *cfg.httpClient
		hc = &clone
	}
	if cfg.timeout > 0 {
		hc.Timeout = cfg.timeout
	}

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.tracing {
		base = otelhttp.NewTransport(base)
	}
	if maxRetries > 0 {
		base = rehttp.NewTransport(base,
			rehttp.RetryAll(
				rehttp.RetryAny(
					rehttp.RetryStatuses(http.StatusTooManyRequests, http.StatusBadGateway,
						http.StatusServiceUnavailable, http.StatusGatewayTimeout),
					rehttp.RetryTemporaryErr(),
				),
				rehttp.RetryMaxRetries(maxRetries),
			),
			c.retryDelay(rehttp.ExpJitterDelay(retryBaseDelay, retryMaxDelay)),
		)
	}
	hc.Transport = base
	return hc
}

// retryDelay honours Retry-After on rate-limited responses and falls back to
// jittered exponential backoff.
func (c *Client) retryDelay(fallback rehttp.DelayFn) rehttp.DelayFn {
	return func(a rehttp.Attempt) time.Duration {
		delay := fallback(a)
		if a.Response != nil {
			if secs, err := strconv.Atoi(a.Response.Header.Get("Retry-After")); err == nil && secs >= 0 {
				delay = min(time.Duration(secs)*time.Second, retryMaxDelay)
			}
		}
		c.obs.retry(a.Request.URL.Host, a.Index+1, delay)
		return delay
	}
}

// Endpoint returns the base URL, always ending in a slash.
func (c *Client) Endpoint() string { return c.endpoint }

// Parallelism returns the number of concurrent requests used by searches.
func (c *Client) Parallelism() int { return c.parallel }

// Heartbeat reports the API status and database version.
func (c *Client) Heartbeat(ctx context.Context) (Heartbeat, error) {
	var hb Heartbeat
	if err := c.do(ctx, call{method: http.MethodGet, route: "heartbeat", path: "heartbeat"}, &hb); err != nil {
		return Heartbeat{}, err
	}
	return hb, nil
}

// call is one API request. route labels metrics and must not carry ids.
type call struct {
	method string
	route  string
	path   string
	params url.Values
	body   []byte
}

func (c *Client) get(ctx context.Context, route, path string, params url.Values) (*page, error) {
	var p page
	if err := c.do(ctx, call{method: http.MethodGet, route: route, path: path, params: params}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) post(ctx context.Context, route, path string, params url.Values, body any) (*page, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mpapi: encode body: %w", err)
	}
	var p page
	req := call{method: http.MethodPost, route: route, path: path, params: params, body: raw}
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) requestURL(path string, params url.Values) string {
	u := c.endpoint + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, rc call, out any) (err error) {
	start := time.Now()
	code := 0
	defer func() { c.obs.observe(rc.route, code, start, err) }()

	if err = c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mpapi: rate limit: %w", err)
	}

	u := c.requestURL(rc.path, rc.params)
	var body io.Reader
	if rc.body != nil {
		body = bytes.NewReader(rc.body)
	}
	req, err := http.NewRequestWithContext(ctx, rc.method, u, body)
	if err != nil {
		return fmt.Errorf("mpapi: build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mpapi: %s %s: %w", rc.method, u, err)
	}
	defer func() { _ = resp.Body.Close() }()
	code = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mpapi: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &RestError{StatusCode: resp.StatusCode, URL: u, Message: errorMessage(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("mpapi: decode response from %s: %w", u, err)
	}
	return nil
}
