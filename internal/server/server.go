// Package server exposes the locate pipeline over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wlocate/wlocate/internal/geoip"
	"github.com/wlocate/wlocate/internal/locate"
	"github.com/wlocate/wlocate/internal/observability"
	"github.com/wlocate/wlocate/internal/wloc"
)

const version = "0.1.0"

// LocateService is the one capability the API depends on.
type LocateService interface {
	Locate(ctx context.Context, queries []wloc.Query, all bool) (locate.Outcome, error)
}

type Server struct {
	addr    string
	locator LocateService
	geo     geoip.Resolver
	router  *gin.Engine
	started time.Time
}

func New(addr string, corsOrigins []string, locator LocateService, geo geoip.Resolver) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if geo == nil {
		geo = geoip.Disabled{}
	}
	s := &Server{
		addr:    addr,
		locator: locator,
		geo:     geo,
		router:  r,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("addr", s.addr).Msg("wlocd listening")
	return s.router.Run(s.addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
