package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Wikidata WikidataConfig `yaml:"wikidata"`
	Cache    CacheConfig    `yaml:"cache"`
	Request  RequestConfig  `yaml:"request"`
	Log      LogConfig      `yaml:"log"`
	Roots    []string       `yaml:"roots"`
}

// WikidataConfig holds settings for the Wikidata API.
type WikidataConfig struct {
	Language    string `yaml:"language"`
	Site        string `yaml:"site"`
	BatchSize   int    `yaml:"batch_size"`
	APIEndpoint string `yaml:"api_endpoint"` // optional override, mostly for tests
}

// CacheConfig holds settings for the local entity cache.
type CacheConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Dir     string `yaml:"dir"`     // file backend
	DBPath  string `yaml:"db_path"` // sqlite backend
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"` // optional log file, stdout is always on
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Wikidata: WikidataConfig{
			Language:  "en",
			Site:      "enwiki",
			BatchSize: 50,
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     "./data/entities",
			DBPath:  "./data/wikigraph.db",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(300 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Roots: []string{"Q1047"},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it is created with default values.
// If the file exists, defaults are merged with existing values but the file is
// NOT written back (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment (the driver loads .env first).
func applyEnv(cfg *Config) {
	if v := os.Getenv("WIKIGRAPH_LANGUAGE"); v != "" {
		cfg.Wikidata.Language = v
	}
	if v := os.Getenv("WIKIGRAPH_SITE"); v != "" {
		cfg.Wikidata.Site = v
	}
	if v := os.Getenv("WIKIGRAPH_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
}

func validate(cfg *Config) error {
	if cfg.Wikidata.Language == "" {
		return fmt.Errorf("wikidata.language must not be empty")
	}
	if cfg.Wikidata.BatchSize < 1 || cfg.Wikidata.BatchSize > 50 {
		return fmt.Errorf("wikidata.batch_size must be between 1 and 50, got %d", cfg.Wikidata.BatchSize)
	}
	switch cfg.Cache.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("cache.backend must be 'file' or 'sqlite', got %q", cfg.Cache.Backend)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Wikigraph Configuration
# ----------------------
# Duration units: ns, us, ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
