package wloc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

var ErrEndpointRequired = errors.New("wloc: upstream endpoint required")

// ClientConfig tunes the upstream transport. Zero values fall back to
// defaults via WithDefaults.
type ClientConfig struct {
	Endpoint  string
	Timeout   time.Duration
	RateLimit float64 // upstream calls per second, 0 = unlimited
	RateBurst int
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:   10 * time.Second,
		RateLimit: 5,
		RateBurst: 5,
	}
}

func (c ClientConfig) WithDefaults() ClientConfig {
	def := DefaultClientConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.RateBurst <= 0 {
		c.RateBurst = def.RateBurst
	}
	return c
}

// Client posts request envelopes to the positioning service and returns the
// raw binary response body. It enforces a client-side rate limit and trips a
// circuit breaker on repeated upstream failures; it never retries.
type Client struct {
	cfg     ClientConfig
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	cfg = cfg.WithDefaults()

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "wloc-upstream",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(limit, cfg.RateBurst),
		log:     logger,
	}, nil
}

// Query sends one request envelope and returns the response body. Non-2xx
// statuses surface as *UpstreamError; an open breaker does too, carrying
// status 0.
func (c *Client) Query(ctx context.Context, envelope []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, envelope)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &UpstreamError{Status: "circuit open"}
		}
		return nil, err
	}

	c.log.Debug().
		Int("request_bytes", len(envelope)).
		Int("response_bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("upstream query")
	return body, nil
}

func (c *Client) post(ctx context.Context, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "locationd/1753.17 CFNetwork/889.9 Darwin/17.2.0")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wloc: upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wloc: upstream body read failed: %w", err)
	}
	return body, nil
}
