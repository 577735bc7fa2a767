package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wlocate/wlocate/internal/geoip"
	"github.com/wlocate/wlocate/internal/locate"
	"github.com/wlocate/wlocate/internal/wloc"
)

type accessPointBody struct {
	BSSID  string   `json:"bssid"`
	Signal *float64 `json:"signal"`
}

type locateBody struct {
	AccessPoints []accessPointBody `json:"accessPoints"`
	All          bool              `json:"all"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "wlocd",
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.started).String(),
			"service": "wlocd",
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/locate", s.handleLocate)
	v1.GET("/ip/:addr", s.handleIPLookup)
}

func (s *Server) handleLocate(c *gin.Context) {
	var body locateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "bad_request"})
		return
	}

	queries := make([]wloc.Query, 0, len(body.AccessPoints))
	for _, ap := range body.AccessPoints {
		queries = append(queries, wloc.Query{BSSID: ap.BSSID, Signal: ap.Signal})
	}

	outcome, err := s.locator.Locate(c.Request.Context(), queries, body.All)
	if err != nil {
		status, code := classifyLocateError(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// classifyLocateError maps the locate error taxonomy onto HTTP statuses:
// caller mistakes are 4xx, anything wrong with the upstream exchange is 502.
func classifyLocateError(err error) (int, string) {
	switch {
	case locate.IsInputError(err):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, locate.ErrUpstreamUnreadable):
		return http.StatusBadGateway, "upstream_unreadable"
	case errors.Is(err, locate.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) handleIPLookup(c *gin.Context) {
	loc, err := s.geo.Lookup(c.Param("addr"))
	if err != nil {
		switch {
		case errors.Is(err, geoip.ErrBadAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		case errors.Is(err, geoip.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
		case errors.Is(err, geoip.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "geoip_unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "internal"})
		}
		return
	}
	c.JSON(http.StatusOK, loc)
}
