package locate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlocate/wlocate/internal/observability"
	"github.com/wlocate/wlocate/internal/wloc"
)

var (
	// ErrUpstreamUnavailable wraps transport-level failures: the service
	// could not be reached or answered with a non-success status.
	ErrUpstreamUnavailable = errors.New("locate: upstream unavailable")
	// ErrUpstreamUnreadable wraps protocol-level failures: the response
	// arrived but its wire format diverged from what the decoder expects.
	ErrUpstreamUnreadable = errors.New("locate: upstream response unreadable")
)

// Transport delivers one request envelope and returns the raw response body.
type Transport interface {
	Query(ctx context.Context, envelope []byte) ([]byte, error)
}

// Outcome is the normalized answer for one locate request.
type Outcome struct {
	Found        bool      `json:"found"`
	Results      []Result  `json:"results"`
	Triangulated *Estimate `json:"triangulated,omitempty"`
}

// Locator drives the full pipeline for one request: validate, query
// upstream per access point, aggregate, triangulate.
type Locator struct {
	transport Transport
	cache     Cache
	log       zerolog.Logger
}

// NewLocator builds a Locator. cache may be nil to disable caching.
func NewLocator(transport Transport, cache Cache, logger zerolog.Logger) *Locator {
	return &Locator{transport: transport, cache: cache, log: logger}
}

// Locate resolves the queries to located access points and, when at least
// two located points carry signal readings, a triangulated estimate.
//
// Upstream calls go out one per unique access point, sequentially, matching
// the observed behavior of the upstream service; the envelope format could
// batch but the single-result flag semantics for batches are unknown. Any
// upstream failure aborts the whole request: there is no partial-result
// policy and no retry here.
func (l *Locator) Locate(ctx context.Context, queries []wloc.Query, all bool) (Outcome, error) {
	set, err := normalizeQueries(queries)
	if err != nil {
		return Outcome{}, err
	}

	var responses [][]wloc.Device
	pending := set.queries
	if l.cache != nil && !all {
		pending = nil
		for _, q := range set.queries {
			coord, ok := l.cache.Get(q.BSSID)
			observability.RecordCacheLookup(ok)
			if !ok {
				pending = append(pending, q)
				continue
			}
			c := coord
			responses = append(responses, []wloc.Device{{BSSID: q.BSSID, Location: &c}})
		}
	}

	for _, q := range pending {
		devices, err := l.queryOne(ctx, q, all)
		if err != nil {
			return Outcome{}, err
		}
		responses = append(responses, devices)
	}

	merged := mergeDevices(responses)
	results := buildResults(merged, set, all)

	outcome := Outcome{Found: len(results) > 0, Results: results}
	outcome.Triangulated = triangulate(triangulationCandidates(results, set.readings))

	l.log.Debug().
		Int("queried", len(set.queries)).
		Int("dispatched", len(pending)).
		Int("results", len(results)).
		Bool("all", all).
		Bool("triangulated", outcome.Triangulated != nil).
		Msg("locate request resolved")
	return outcome, nil
}

func (l *Locator) queryOne(ctx context.Context, q wloc.Query, all bool) ([]wloc.Device, error) {
	envelope, err := wloc.BuildRequest([]wloc.Query{q}, all)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := l.transport.Query(ctx, envelope)
	if err != nil {
		observability.RecordUpstreamCall("transport_error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	devices, err := wloc.DecodeResponse(body)
	if err != nil {
		observability.RecordUpstreamCall("decode_error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnreadable, err)
	}
	observability.RecordUpstreamCall("ok", time.Since(start))

	if l.cache != nil {
		for _, dev := range devices {
			if dev.Location == nil {
				continue
			}
			if canon, ok := canonicalBSSID(dev.BSSID); ok {
				l.cache.Set(canon, *dev.Location)
			}
		}
	}
	return devices, nil
}

// IsInputError reports whether err is the caller's fault: such failures
// never reach the upstream and map to a 4xx at the HTTP boundary.
func IsInputError(err error) bool {
	var badBSSID InvalidBSSIDError
	var badSignal InvalidSignalError
	return errors.Is(err, wloc.ErrEmptyRequest) ||
		errors.Is(err, wloc.ErrEnvelopeTooLarge) ||
		errors.As(err, &badBSSID) ||
		errors.As(err, &badSignal)
}
