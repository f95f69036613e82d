package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the mpapi server configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Cache      CacheConfig      `yaml:"cache"`
	Objects    ObjectsConfig    `yaml:"objects"`
	Pagination PaginationConfig `yaml:"pagination"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Auth       AuthConfig       `yaml:"auth"`
}

// AuthConfig holds accepted X-API-KEY values. Empty disables authentication.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// TracingConfig toggles the OTLP exporter. Exporter details come from the
// standard OTEL_* environment variables.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// MongoConfig holds document store settings.
// Collections overrides the collection name per route prefix. DBVersion
// names the loaded release and overrides the build-time value.
type MongoConfig struct {
	DBVersion        string            `yaml:"db_version"`
	URI              string            `yaml:"uri"`
	Database         string            `yaml:"database"`
	ConsumerDatabase string            `yaml:"consumer_database"`
	Collections      map[string]string `yaml:"collections"`
	ReadinessTimeout int               `yaml:"readiness_timeout_sec"`
	QueryTimeoutSec  int               `yaml:"query_timeout_sec"`
	EnsureIndexes    bool              `yaml:"ensure_indexes"`
}

// CacheConfig holds the optional redis response cache settings.
// An empty Addrs list disables caching.
type CacheConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	TTLSec    int      `yaml:"ttl_sec"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// ObjectsConfig holds S3-compatible object storage settings for the
// bandstructure, dos and charge density object routes.
// An empty Endpoint disables the object routes.
type ObjectsConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	AccessKey string            `yaml:"access_key"`
	SecretKey string            `yaml:"secret_key"`
	UseSSL    bool              `yaml:"use_ssl"`
	Region    string            `yaml:"region"`
	Buckets   map[string]string `yaml:"buckets"`
	Compress  bool              `yaml:"compress"`
	Suffix    string            `yaml:"suffix"`
}

// Enabled reports whether object storage is configured.
func (c ObjectsConfig) Enabled() bool { return c.Endpoint != "" }

// PaginationConfig holds default and maximum page sizes.
type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes a YAML document after env expansion, then applies defaults
// and validates the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Collection returns the configured collection for a route prefix, or def.
func (c *Config) Collection(prefix, def string) string {
	if name, ok := c.Mongo.Collections[prefix]; ok && name != "" {
		return name
	}
	return def
}

// Bucket returns the configured bucket for an object route, or def.
func (c *Config) Bucket(route, def string) string {
	if name, ok := c.Objects.Buckets[route]; ok && name != "" {
		return name
	}
	return def
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "mp_core"
	}
	if c.Mongo.ConsumerDatabase == "" {
		c.Mongo.ConsumerDatabase = "mp_consumers"
	}
	if c.Mongo.ReadinessTimeout <= 0 {
		c.Mongo.ReadinessTimeout = 10
	}
	if c.Mongo.QueryTimeoutSec <= 0 {
		c.Mongo.QueryTimeoutSec = 30
	}
	addrs := c.Cache.Addrs[:0]
	for _, a := range c.Cache.Addrs {
		if strings.TrimSpace(a) != "" {
			addrs = append(addrs, a)
		}
	}
	c.Cache.Addrs = addrs
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "mpapi:"
	}
	if c.Pagination.DefaultLimit <= 0 {
		c.Pagination.DefaultLimit = 10
	}
	if c.Pagination.MaxLimit <= 0 {
		c.Pagination.MaxLimit = 1000
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "mpapi"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf(
			"pagination.default_limit (%d) must not exceed pagination.max_limit (%d)",
			c.Pagination.DefaultLimit, c.Pagination.MaxLimit,
		)
	}
	if c.Objects.Enabled() && (c.Objects.AccessKey == "" || c.Objects.SecretKey == "") {
		return fmt.Errorf("objects.access_key and objects.secret_key are required when objects.endpoint is set")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
