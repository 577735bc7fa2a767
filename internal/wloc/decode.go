package wloc

import "github.com/wlocate/wlocate/internal/wire"

// responsePrefixLen is the fixed upstream header preceding the wire message.
// Its internal structure is not modeled; it is stripped and ignored.
const responsePrefixLen = 10

// Field numbers observed in upstream responses.
const (
	fieldResponseDevice    = 2 // length-delimited device record
	fieldDeviceBSSID       = 1 // length-delimited BSSID text
	fieldDeviceLocation    = 2 // length-delimited location submessage
	fieldLocationLatitude  = 1 // varint, degrees * 1e8, two's complement
	fieldLocationLongitude = 2
)

// DecodeResponse parses one raw upstream response body into device records.
//
// Unknown field numbers are skipped at every level; the upstream adds fields
// over time and decoding must survive that. A record without a BSSID is
// dropped. A location missing either coordinate, or carrying the (-180, -180)
// sentinel, decodes to no location at all.
func DecodeResponse(raw []byte) ([]Device, error) {
	if len(raw) <= responsePrefixLen {
		return nil, ErrShortResponse
	}

	var devices []Device
	s := wire.NewScanner(raw[responsePrefixLen:])
	for f, ok := s.Next(); ok; f, ok = s.Next() {
		if f.Number != fieldResponseDevice || f.Type != wire.TypeBytes {
			continue
		}
		dev, err := decodeDevice(f.Bytes)
		if err != nil {
			return nil, err
		}
		if dev.BSSID == "" {
			continue
		}
		devices = append(devices, dev)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

func decodeDevice(buf []byte) (Device, error) {
	var dev Device
	s := wire.NewScanner(buf)
	for f, ok := s.Next(); ok; f, ok = s.Next() {
		if f.Type != wire.TypeBytes {
			continue
		}
		switch f.Number {
		case fieldDeviceBSSID:
			dev.BSSID = string(f.Bytes)
		case fieldDeviceLocation:
			loc, err := decodeLocation(f.Bytes)
			if err != nil {
				return Device{}, err
			}
			dev.Location = loc
		}
	}
	if err := s.Err(); err != nil {
		return Device{}, err
	}
	return dev, nil
}

func decodeLocation(buf []byte) (*Coordinate, error) {
	var lat, lon uint64
	var hasLat, hasLon bool
	s := wire.NewScanner(buf)
	for f, ok := s.Next(); ok; f, ok = s.Next() {
		if f.Type != wire.TypeVarint {
			continue
		}
		switch f.Number {
		case fieldLocationLatitude:
			lat, hasLat = f.Varint, true
		case fieldLocationLongitude:
			lon, hasLon = f.Varint, true
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if !hasLat || !hasLon {
		return nil, nil
	}
	// Coordinates ride as unsigned varints; values past the signed maximum
	// are negative degrees in two's complement.
	c := Coordinate{LatitudeE8: int64(lat), LongitudeE8: int64(lon)}
	if c.unknown() {
		return nil, nil
	}
	return &c, nil
}
