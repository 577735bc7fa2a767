// Package geoip provides the coarse IP-address fallback used when a caller
// has no access points to offer: a lookup against a local MaxMind database.
package geoip

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

var (
	ErrUnavailable = errors.New("geoip: no database configured")
	ErrNotFound    = errors.New("geoip: address not found")
	ErrBadAddress  = errors.New("geoip: invalid ip address")
)

// Location is a city-precision position for an IP address. Accuracy is the
// database's radius in kilometers; expect tens of kilometers, not meters.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  uint16  `json:"accuracyKm"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// Resolver answers IP lookups. The nil-database Disabled resolver satisfies
// it for deployments without a configured .mmdb.
type Resolver interface {
	Lookup(addr string) (Location, error)
	Close() error
}

type record struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Location struct {
		Latitude       float64 `maxminddb:"latitude"`
		Longitude      float64 `maxminddb:"longitude"`
		AccuracyRadius uint16  `maxminddb:"accuracy_radius"`
	} `maxminddb:"location"`
}

// Database reads a MaxMind GeoLite2/GeoIP2 city database.
type Database struct {
	reader *maxminddb.Reader
}

func Open(path string) (*Database, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Database{reader: reader}, nil
}

func (d *Database) Lookup(addr string) (Location, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return Location{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	var rec record
	if err := d.reader.Lookup(ip, &rec); err != nil {
		return Location{}, fmt.Errorf("geoip: lookup: %w", err)
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 && rec.Country.ISOCode == "" {
		return Location{}, ErrNotFound
	}
	return Location{
		Latitude:  rec.Location.Latitude,
		Longitude: rec.Location.Longitude,
		Accuracy:  rec.Location.AccuracyRadius,
		City:      rec.City.Names["en"],
		Country:   rec.Country.ISOCode,
	}, nil
}

func (d *Database) Close() error {
	return d.reader.Close()
}

// Disabled is the resolver used when no database path is configured; every
// lookup reports ErrUnavailable.
type Disabled struct{}

func (Disabled) Lookup(string) (Location, error) {
	return Location{}, ErrUnavailable
}

func (Disabled) Close() error {
	return nil
}
