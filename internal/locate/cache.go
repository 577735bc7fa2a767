package locate

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/wlocate/wlocate/internal/wloc"
)

// Cache is a read-through store of located access points keyed by canonical
// BSSID. Only coordinates are cached; signal summaries depend on the
// caller's readings and are recomputed per request.
type Cache interface {
	Get(bssid string) (wloc.Coordinate, bool)
	Set(bssid string, c wloc.Coordinate)
}

// MemoryCache keeps located BSSIDs in process memory with a TTL. It is a
// latency and rate-limit shield for repeated lookups, not persistence: it
// dies with the process.
type MemoryCache struct {
	store *bigcache.BigCache
}

func NewMemoryCache(ttl time.Duration) (*MemoryCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	store, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{store: store}, nil
}

func (m *MemoryCache) Get(bssid string) (wloc.Coordinate, bool) {
	raw, err := m.store.Get(bssid)
	if err != nil || len(raw) != 16 {
		return wloc.Coordinate{}, false
	}
	return wloc.Coordinate{
		LatitudeE8:  int64(binary.BigEndian.Uint64(raw[0:8])),
		LongitudeE8: int64(binary.BigEndian.Uint64(raw[8:16])),
	}, true
}

func (m *MemoryCache) Set(bssid string, c wloc.Coordinate) {
	raw := make([]byte, 16)
	binary.BigEndian.PutUint64(raw[0:8], uint64(c.LatitudeE8))
	binary.BigEndian.PutUint64(raw[8:16], uint64(c.LongitudeE8))
	_ = m.store.Set(bssid, raw)
}
