package wloc

import (
	"encoding/binary"

	"github.com/wlocate/wlocate/internal/wire"
)

// Every literal below is an interoperability contract with the upstream
// service. The format is reverse engineered; none of it is negotiable.
const (
	localeTag        = "en_US"
	clientIdentifier = "com.apple.locationd"
	clientVersion    = "8.1.12B411"
)

var (
	envelopeHeader  = []byte{0x00, 0x01, 0x00, 0x05}
	envelopeTrailer = []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
)

// Field numbers of the inner request message.
const (
	fieldRequestDevice   = 2 // length-delimited, one per queried access point
	fieldRequestAccuracy = 3 // varint, reserved, always 0
	fieldRequestSingle   = 4 // varint, 1 = return only the exact match
)

// BuildRequest assembles the outbound payload for one upstream call.
//
// Each query becomes a length-delimited device submessage holding the BSSID
// as literal text. The trailing single-result flag is set only when exactly
// one access point is queried and the caller did not ask for all nearby
// devices. The inner message is capped at 255 bytes by the envelope's
// one-byte length prefix; BuildRequest refuses larger batches rather than
// guessing how the upstream would frame them.
func BuildRequest(queries []Query, returnAll bool) ([]byte, error) {
	if len(queries) == 0 {
		return nil, ErrEmptyRequest
	}

	var inner []byte
	for _, q := range queries {
		sub := wire.AppendTag(nil, 1, wire.TypeBytes)
		sub = wire.AppendUvarint(sub, uint64(len(q.BSSID)))
		sub = append(sub, q.BSSID...)

		inner = wire.AppendTag(inner, fieldRequestDevice, wire.TypeBytes)
		inner = wire.AppendUvarint(inner, uint64(len(sub)))
		inner = append(inner, sub...)
	}

	inner = wire.AppendTag(inner, fieldRequestAccuracy, wire.TypeVarint)
	inner = wire.AppendUvarint(inner, 0)

	single := uint64(0)
	if len(queries) == 1 && !returnAll {
		single = 1
	}
	inner = wire.AppendTag(inner, fieldRequestSingle, wire.TypeVarint)
	inner = wire.AppendUvarint(inner, single)

	if len(inner) > 0xff {
		return nil, ErrEnvelopeTooLarge
	}

	out := make([]byte, 0, len(envelopeHeader)+len(localeTag)+len(clientIdentifier)+len(clientVersion)+len(envelopeTrailer)+12+len(inner))
	out = append(out, envelopeHeader...)
	out = append(out, localeTag...)
	out = appendPrefixed(out, clientIdentifier)
	out = appendPrefixed(out, clientVersion)
	out = append(out, envelopeTrailer...)
	out = append(out, byte(len(inner)))
	out = append(out, inner...)
	return out, nil
}

func appendPrefixed(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}
