// Package wloc speaks the reverse-engineered binary protocol of the upstream
// Wi-Fi positioning service: the fixed-shape request envelope, the tag/wire
// encoded inner messages, and the device records inside responses.
package wloc

import "math"

// coordinateScale converts the wire fixed-point representation (decimal
// degrees times 1e8) to and from degrees.
const coordinateScale = 1e8

// Coordinate is a fixed-point WGS84 position as carried on the wire.
type Coordinate struct {
	LatitudeE8  int64
	LongitudeE8 int64
}

// Latitude returns the latitude in decimal degrees.
func (c Coordinate) Latitude() float64 {
	return float64(c.LatitudeE8) / coordinateScale
}

// Longitude returns the longitude in decimal degrees.
func (c Coordinate) Longitude() float64 {
	return float64(c.LongitudeE8) / coordinateScale
}

// unknown reports whether c is the upstream sentinel for "no known location",
// (-180, -180) degrees after scaling.
func (c Coordinate) unknown() bool {
	return c.LatitudeE8 == -180*coordinateScale && c.LongitudeE8 == -180*coordinateScale
}

// Device is one access point record decoded from an upstream response.
// Location is nil when the response carried no usable position for it.
type Device struct {
	BSSID    string
	Location *Coordinate
}

// Query is one access point the caller wants located. Signal is the
// caller-observed RSSI in dBm; nil when the caller has no reading.
type Query struct {
	BSSID  string
	Signal *float64
}

// SignalValid reports whether the query carries a finite signal reading.
func (q Query) SignalValid() bool {
	return q.Signal != nil && !math.IsNaN(*q.Signal) && !math.IsInf(*q.Signal, 0)
}
