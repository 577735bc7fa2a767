package main

import (
	"flag"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/wlocate/wlocate/internal/config"
	"github.com/wlocate/wlocate/internal/geoip"
	"github.com/wlocate/wlocate/internal/locate"
	"github.com/wlocate/wlocate/internal/observability"
	"github.com/wlocate/wlocate/internal/server"
	"github.com/wlocate/wlocate/internal/wloc"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	_ = godotenv.Load()
	observability.InitLogger("wlocd")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *configPath != "" {
		log.Info().Str("path", *configPath).Msg("loaded config")
	}

	client, err := wloc.NewClient(wloc.ClientConfig{
		Endpoint:  cfg.Upstream.Endpoint,
		Timeout:   cfg.UpstreamTimeout(),
		RateLimit: cfg.Upstream.RateLimit,
		RateBurst: cfg.Upstream.RateBurst,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build upstream client")
	}

	var cache locate.Cache
	if cfg.Cache.Enabled {
		memory, err := locate.NewMemoryCache(cfg.CacheTTL())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build cache")
		}
		cache = memory
		log.Info().Dur("ttl", cfg.CacheTTL()).Msg("bssid cache enabled")
	}

	var resolver geoip.Resolver = geoip.Disabled{}
	if cfg.GeoIP.Database != "" {
		db, err := geoip.Open(cfg.GeoIP.Database)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.GeoIP.Database).Msg("failed to open geoip database")
		}
		defer db.Close()
		resolver = db
		log.Info().Str("path", cfg.GeoIP.Database).Msg("geoip database loaded")
	}

	locator := locate.NewLocator(client, cache, log.Logger)
	srv := server.New(cfg.Addr, cfg.CorsOrigins, locator, resolver)

	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("wlocd stopped")
	}
}
