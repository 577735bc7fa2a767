package wire

import "encoding/binary"

// Field is one decoded field. Varint holds the value for TypeVarint fields;
// Bytes aliases into the scanned buffer for TypeBytes, TypeFixed64 and
// TypeFixed32 fields and is only valid while that buffer is.
type Field struct {
	Number uint32
	Type   Type
	Varint uint64
	Bytes  []byte
}

// Fixed64 returns the little-endian value of a TypeFixed64 field.
func (f Field) Fixed64() uint64 {
	if f.Type != TypeFixed64 || len(f.Bytes) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(f.Bytes)
}

// Fixed32 returns the little-endian value of a TypeFixed32 field.
func (f Field) Fixed32() uint32 {
	if f.Type != TypeFixed32 || len(f.Bytes) != 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(f.Bytes)
}

// Scanner walks a message buffer one field at a time. It is a single forward
// pass; callers decide per field number whether to decode or ignore, which is
// what keeps the decoder compatible with fields the upstream adds later.
type Scanner struct {
	buf []byte
	off int
	err error
}

func NewScanner(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// Next returns the next field. ok is false once the buffer is exhausted or a
// decode error occurred; check Err to distinguish.
func (s *Scanner) Next() (f Field, ok bool) {
	if s.err != nil || s.off >= len(s.buf) {
		return Field{}, false
	}
	number, t, next, err := ReadTag(s.buf, s.off)
	if err != nil {
		s.err = err
		return Field{}, false
	}
	f = Field{Number: number, Type: t}
	switch t {
	case TypeVarint:
		f.Varint, next, err = Uvarint(s.buf, next)
	case TypeFixed64:
		if len(s.buf)-next < 8 {
			err = ErrTruncated
			break
		}
		f.Bytes = s.buf[next : next+8]
		next += 8
	case TypeBytes:
		var n uint64
		n, next, err = Uvarint(s.buf, next)
		if err != nil {
			break
		}
		if uint64(len(s.buf)-next) < n {
			err = ErrTruncated
			break
		}
		f.Bytes = s.buf[next : next+int(n)]
		next += int(n)
	case TypeFixed32:
		if len(s.buf)-next < 4 {
			err = ErrTruncated
			break
		}
		f.Bytes = s.buf[next : next+4]
		next += 4
	default:
		err = ErrWireType
	}
	if err != nil {
		s.err = err
		return Field{}, false
	}
	s.off = next
	return f, true
}

// Err returns the first error encountered while scanning, if any.
func (s *Scanner) Err() error {
	return s.err
}
