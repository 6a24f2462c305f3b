// Package config handles the report scripts' service configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/processing/config.yml.
type Config struct {
	ArticleMeta       Endpoint    `yaml:"articlemeta"`
	Ratchet           Endpoint    `yaml:"ratchet"`
	Analytics         Endpoint    `yaml:"analytics"`
	AccessStats       AccessStats `yaml:"accessstats"`
	RequestsPerSecond float64     `yaml:"requests_per_second,omitempty"`
	HomeCountry       string      `yaml:"home_country,omitempty"`
}

// Endpoint is an HTTP service.
type Endpoint struct {
	URL            string `yaml:"url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// AccessStats locates the access search index.
type AccessStats struct {
	Addresses []string `yaml:"addresses,omitempty"`
	Index     string   `yaml:"index,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "processing"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variables overriding the file.
const (
	EnvArticleMetaURL    = "ARTICLEMETA_URL"
	EnvRatchetURL        = "RATCHET_URL"
	EnvAnalyticsURL      = "ANALYTICS_URL"
	EnvAccessStatsAddrs  = "ACCESSSTATS_ADDRESSES"
	EnvAccessStatsIndex  = "ACCESSSTATS_INDEX"
	EnvRequestsPerSecond = "REQUESTS_PER_SECOND"
)

// configCache caches the loaded default config.
var configCache *Config

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ArticleMeta: Endpoint{URL: "http://articlemeta.scielo.org", TimeoutSeconds: 60},
		Ratchet:     Endpoint{URL: "http://ratchet.scielo.org", TimeoutSeconds: 30},
		Analytics:   Endpoint{URL: "http://analytics.scielo.org", TimeoutSeconds: 30},
		AccessStats: AccessStats{
			Addresses: []string{"http://localhost:9200"},
			Index:     "accesses",
		},
		RequestsPerSecond: 10,
		HomeCountry:       "brazil",
	}
}

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/processing/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// LoadDefault loads the config file at Path, once per process.
func LoadDefault() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}
	cfg, err := Load(Path())
	if err != nil {
		return nil, err
	}
	configCache = cfg
	return cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}

// Load reads the config at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvArticleMetaURL); v != "" {
		c.ArticleMeta.URL = v
	}
	if v := os.Getenv(EnvRatchetURL); v != "" {
		c.Ratchet.URL = v
	}
	if v := os.Getenv(EnvAnalyticsURL); v != "" {
		c.Analytics.URL = v
	}
	if v := os.Getenv(EnvAccessStatsAddrs); v != "" {
		var addrs []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		c.AccessStats.Addresses = addrs
	}
	if v := os.Getenv(EnvAccessStatsIndex); v != "" {
		c.AccessStats.Index = v
	}
	if v := os.Getenv(EnvRequestsPerSecond); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRequestsPerSecond, err)
		}
		c.RequestsPerSecond = rps
	}
	return nil
}

// Validate checks that every service is addressable.
func (c *Config) Validate() error {
	if c.ArticleMeta.URL == "" {
		return fmt.Errorf("articlemeta url not configured")
	}
	if c.Ratchet.URL == "" {
		return fmt.Errorf("ratchet url not configured")
	}
	if c.Analytics.URL == "" {
		return fmt.Errorf("analytics url not configured")
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %v", c.RequestsPerSecond)
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
