package locate

import (
	"testing"
	"time"

	"github.com/wlocate/wlocate/internal/wloc"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache, err := NewMemoryCache(time.Minute)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}

	if _, ok := cache.Get("34:db:fd:43:e3:a1"); ok {
		t.Fatalf("hit on empty cache")
	}

	want := wloc.Coordinate{LatitudeE8: 4885661300, LongitudeE8: 235222200}
	cache.Set("34:db:fd:43:e3:a1", want)

	got, ok := cache.Get("34:db:fd:43:e3:a1")
	if !ok {
		t.Fatalf("miss after set")
	}
	if got != want {
		t.Fatalf("cached coordinate = %+v, want %+v", got, want)
	}
	if got.Latitude() != 48.856613 || got.Longitude() != 2.352222 {
		t.Fatalf("decoded coordinate = %v, %v", got.Latitude(), got.Longitude())
	}
}

func TestMemoryCacheNegativeCoordinates(t *testing.T) {
	cache, err := NewMemoryCache(time.Minute)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}

	want := wloc.Coordinate{LatitudeE8: -3386000000, LongitudeE8: -7060000000}
	cache.Set("aa:bb:cc:dd:ee:ff", want)

	got, ok := cache.Get("aa:bb:cc:dd:ee:ff")
	if !ok {
		t.Fatalf("miss after set")
	}
	if got != want {
		t.Fatalf("cached coordinate = %+v, want %+v", got, want)
	}
}
