package mpapi

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEndpoint is the public Materials Project API.
	DefaultEndpoint = "https://api.materialsproject.org/"
	// DefaultMaxRetries is the retry budget for rate-limited requests.
	DefaultMaxRetries = 3
	// DefaultParallel is the number of concurrent search requests.
	DefaultParallel = 8
	// DefaultRequestsPerMin caps the client request rate.
	DefaultRequestsPerMin = 200
	// DefaultChunkSize is the page size of searches.
	DefaultChunkSize = 1000
	// MaxURLLength bounds the URL of a single split request.
	MaxURLLength = 2000
	// MaxIDListLength bounds the ids accepted by a single filter.
	MaxIDListLength = 10000

	settingsFileName = ".pmgrc.yaml"
)

// Settings file keys shared with pymatgen.
const (
	SettingAPIKey   = "PMG_MAPI_KEY"
	SettingEndpoint = "PMG_MAPI_ENDPOINT"
)

// QueryNoParallel lists the parameters that are never split across parallel
// requests: they combine with AND semantics or are not filters at all.
var QueryNoParallel = []string{
	"elements",
	"exclude_elements",
	"possible_species",
	"coordination_envs",
	"coordination_envs_anonymous",
	"has_props",
	"gb_plane",
	"rotation_axis",
	"keywords",
	"substrate_orientation",
	"film_orientation",
	"synthesis_type",
	"operations",
	"condition_mixing_device",
	"condition_mixing_media",
	"condition_heating_atmosphere",
	"_sort_fields",
	"_fields",
}

// Settings is the content of ~/.pmgrc.yaml used by the client. Other keys
// are kept in Extra so that saving a setting preserves them.
type Settings struct {
	APIKey   string         `mapstructure:"PMG_MAPI_KEY"`
	Endpoint string         `mapstructure:"PMG_MAPI_ENDPOINT"`
	Extra    map[string]any `mapstructure:",remain"`
}

// SettingsPath returns the location of ~/.pmgrc.yaml.
func SettingsPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("mpapi: find home directory: %w", err)
	}
	return filepath.Join(home, settingsFileName), nil
}

// LoadSettings reads the settings file at path. A missing file yields empty
// settings.
func LoadSettings(path string) (Settings, error) {
	raw, err := readSettings(path)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := mapstructure.Decode(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("mpapi: decode settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSetting sets key to value in the settings file at path, creating the
// file if needed.
func SaveSetting(path, key, value string) error {
	raw, err := readSettings(path)
	if err != nil {
		return err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	raw[key] = value

	out, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("mpapi: encode settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("mpapi: write settings %s: %w", path, err)
	}
	return nil
}

func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mpapi: read settings %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("mpapi: parse settings %s: %w", path, err)
	}
	return raw, nil
}

// resolved holds the effective client settings.
type resolved struct {
	apiKey         string
	endpoint       string
	maxRetries     int
	parallel       int
	requestsPerMin int
}

// resolve applies options, then MP_API_* environment variables, then the
// settings file, then defaults.
func resolve(cfg *clientConfig) (resolved, error) {
	getenv := cfg.getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	path := cfg.settingsPath
	if path == "" {
		var err error
		if path, err = SettingsPath(); err != nil {
			path = ""
		}
	}
	var file Settings
	if path != "" {
		var err error
		if file, err = LoadSettings(path); err != nil {
			return resolved{}, err
		}
	}

	r := resolved{
		apiKey:   firstNonEmpty(cfg.apiKey, getenv("MP_API_KEY"), file.APIKey),
		endpoint: firstNonEmpty(cfg.endpoint, getenv("MP_API_ENDPOINT"), file.Endpoint, DefaultEndpoint),
	}
	if !strings.HasSuffix(r.endpoint, "/") {
		r.endpoint += "/"
	}

	var err error
	if cfg.maxRetries != nil {
		r.maxRetries = *cfg.maxRetries
	} else if r.maxRetries, err = envInt(getenv, "MP_API_MAX_RETRIES", DefaultMaxRetries); err != nil {
		return resolved{}, err
	}
	if r.parallel = cfg.parallel; r.parallel == 0 {
		if r.parallel, err = envInt(getenv, "MP_API_NUM_PARALLEL_REQUESTS", DefaultParallel); err != nil {
			return resolved{}, err
		}
	}
	if r.requestsPerMin = cfg.requestsPerMin; r.requestsPerMin == 0 {
		if r.requestsPerMin, err = envInt(getenv, "MP_API_REQUESTS_PER_MIN", DefaultRequestsPerMin); err != nil {
			return resolved{}, err
		}
	}

	switch {
	case r.maxRetries < 0:
		return resolved{}, fmt.Errorf("mpapi: max retries must not be negative, got %d", r.maxRetries)
	case r.parallel < 1:
		return resolved{}, fmt.Errorf("mpapi: parallelism must be at least 1, got %d", r.parallel)
	case r.requestsPerMin < 1:
		return resolved{}, fmt.Errorf("mpapi: requests per minute must be at least 1, got %d", r.requestsPerMin)
	}
	return r, nil
}

func envInt(getenv func(string) string, name string, def int) (int, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("mpapi: %s: %w", name, err)
	}
	return n, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
