package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr: got %q", cfg.Addr)
	}
	if cfg.Upstream.Endpoint != DefaultUpstreamEndpoint {
		t.Fatalf("endpoint: got %q", cfg.Upstream.Endpoint)
	}
	if cfg.UpstreamTimeout() != 10*time.Second {
		t.Fatalf("timeout: got %v", cfg.UpstreamTimeout())
	}
	if !cfg.Cache.Enabled || cfg.CacheTTL() != 15*time.Minute {
		t.Fatalf("cache defaults: %+v", cfg.Cache)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wlocd.toml")
	body := `
addr = ":9090"
cors_origins = ["http://localhost:3000"]

[upstream]
endpoint = "http://127.0.0.1:8999/wloc"
timeout = "3s"
rate_limit = 2.5
rate_burst = 2

[cache]
enabled = false

[geoip]
database = "/var/lib/geoip/city.mmdb"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr: got %q", cfg.Addr)
	}
	if cfg.Upstream.Endpoint != "http://127.0.0.1:8999/wloc" {
		t.Fatalf("endpoint: got %q", cfg.Upstream.Endpoint)
	}
	if cfg.UpstreamTimeout() != 3*time.Second {
		t.Fatalf("timeout: got %v", cfg.UpstreamTimeout())
	}
	if cfg.Upstream.RateLimit != 2.5 || cfg.Upstream.RateBurst != 2 {
		t.Fatalf("rate: %+v", cfg.Upstream)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("cache should be disabled")
	}
	if cfg.GeoIP.Database != "/var/lib/geoip/city.mmdb" {
		t.Fatalf("geoip: got %q", cfg.GeoIP.Database)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvAddr, ":7070")
	t.Setenv(EnvUpstreamEndpoint, "http://override/wloc")
	t.Setenv(EnvGeoIPDatabase, "/tmp/city.mmdb")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Upstream.Endpoint != "http://override/wloc" || cfg.GeoIP.Database != "/tmp/city.mmdb" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Addr = " "
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected missing addr error")
	}

	cfg = Default()
	cfg.Upstream.Endpoint = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected missing endpoint error")
	}

	cfg = Default()
	cfg.Cache.TTL = duration{}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected cache ttl error")
	}
}
