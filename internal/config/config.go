// Package config loads the daemon configuration: TOML file, defaults, and a
// small set of environment overrides for containerized deployments.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvAddr             = "WLOCD_ADDR"
	EnvUpstreamEndpoint = "WLOCD_UPSTREAM_ENDPOINT"
	EnvGeoIPDatabase    = "WLOCD_GEOIP_DATABASE"
)

// DefaultUpstreamEndpoint is the observed production endpoint of the
// positioning service.
const DefaultUpstreamEndpoint = "https://gs-loc.apple.com/clls/wloc"

type Config struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`

	Upstream UpstreamConfig `toml:"upstream"`
	Cache    CacheConfig    `toml:"cache"`
	GeoIP    GeoIPConfig    `toml:"geoip"`
}

type UpstreamConfig struct {
	Endpoint  string   `toml:"endpoint"`
	Timeout   duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit"`
	RateBurst int      `toml:"rate_burst"`
}

type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	TTL     duration `toml:"ttl"`
}

type GeoIPConfig struct {
	Database string `toml:"database"`
}

// duration accepts "10s" style strings in TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() Config {
	return Config{
		Addr: ":8080",
		Upstream: UpstreamConfig{
			Endpoint:  DefaultUpstreamEndpoint,
			Timeout:   duration{10 * time.Second},
			RateLimit: 5,
			RateBurst: 5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     duration{15 * time.Minute},
		},
	}
}

// Load reads path when non-empty, applies environment overrides, and
// validates. A missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUpstreamEndpoint)); v != "" {
		cfg.Upstream.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGeoIPDatabase)); v != "" {
		cfg.GeoIP.Database = v
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	if strings.TrimSpace(cfg.Upstream.Endpoint) == "" {
		return fmt.Errorf("config missing upstream endpoint")
	}
	if cfg.Upstream.Timeout.Duration < 0 {
		return fmt.Errorf("upstream timeout must not be negative")
	}
	if cfg.Upstream.RateLimit < 0 {
		return fmt.Errorf("upstream rate_limit must not be negative")
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL.Duration <= 0 {
		return fmt.Errorf("cache ttl must be positive when cache is enabled")
	}
	return nil
}

// UpstreamTimeout exposes the parsed timeout without the TOML wrapper type.
func (c Config) UpstreamTimeout() time.Duration { return c.Upstream.Timeout.Duration }

// CacheTTL exposes the parsed TTL without the TOML wrapper type.
func (c Config) CacheTTL() time.Duration { return c.Cache.TTL.Duration }
