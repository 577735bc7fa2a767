// Package wire implements the tag/wire-type binary encoding spoken by the
// upstream positioning service. The framing is structurally identical to the
// protobuf wire format: base-128 varints, and per-field tags carrying a field
// number and one of four wire types.
package wire

import "errors"

var (
	ErrTruncated = errors.New("wire: truncated input")
	ErrWireType  = errors.New("wire: unsupported wire type")
	ErrOverflow  = errors.New("wire: varint overflows uint64")
)

// Type is the 3-bit wire type carried in the low bits of a field tag.
type Type uint8

const (
	TypeVarint  Type = 0
	TypeFixed64 Type = 1
	TypeBytes   Type = 2
	TypeFixed32 Type = 5
)

// Valid reports whether t is one of the wire types the upstream service emits.
func (t Type) Valid() bool {
	switch t {
	case TypeVarint, TypeFixed64, TypeBytes, TypeFixed32:
		return true
	default:
		return false
	}
}

// AppendUvarint appends v to buf in base-128 little-endian group encoding.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// Uvarint decodes one varint starting at offset and returns the value and the
// offset of the byte after it. Returns ErrTruncated when buf ends before a
// terminating byte.
func Uvarint(buf []byte, offset int) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := offset; i < len(buf); i++ {
		b := buf[i]
		if shift > 63 || (shift == 63 && b > 1) {
			return 0, 0, ErrOverflow
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// AppendTag appends the varint-encoded tag (number << 3 | type) to buf.
func AppendTag(buf []byte, number uint32, t Type) []byte {
	return AppendUvarint(buf, uint64(number)<<3|uint64(t))
}

// ReadTag decodes one field tag starting at offset.
func ReadTag(buf []byte, offset int) (uint32, Type, int, error) {
	raw, next, err := Uvarint(buf, offset)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint32(raw >> 3), Type(raw & 0x7), next, nil
}

// Skip advances past the value of a field with the given wire type and
// returns the offset of the next tag. Unknown wire types are a hard failure:
// once the stream contains one, field boundaries can no longer be trusted.
func Skip(buf []byte, offset int, t Type) (int, error) {
	switch t {
	case TypeVarint:
		_, next, err := Uvarint(buf, offset)
		return next, err
	case TypeFixed64:
		if len(buf)-offset < 8 {
			return 0, ErrTruncated
		}
		return offset + 8, nil
	case TypeBytes:
		n, next, err := Uvarint(buf, offset)
		if err != nil {
			return 0, err
		}
		if uint64(len(buf)-next) < n {
			return 0, ErrTruncated
		}
		return next + int(n), nil
	case TypeFixed32:
		if len(buf)-offset < 4 {
			return 0, ErrTruncated
		}
		return offset + 4, nil
	default:
		return 0, ErrWireType
	}
}
