package appmsg

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire format (little-endian): count uint8, then per tuple key uint32,
// type uint8, length uint16 and length bytes of value.
const (
	headerLen      = 1
	tupleHeaderLen = 7
)

// EncodedSize returns the number of bytes Encode produces for d.
func EncodedSize(d Dict) int {
	n := headerLen
	for _, t := range d.tuples {
		n += tupleHeaderLen + len(t.Value)
	}
	return n
}

// Encode serializes d, failing with ErrBufferOverflow when the result would
// not fit in limit bytes.
func Encode(d Dict, limit int) ([]byte, error) {
	if len(d.tuples) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d tuples", ErrBufferOverflow, len(d.tuples))
	}
	size := EncodedSize(d)
	if size > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrBufferOverflow, size, limit)
	}

	out := make([]byte, size)
	out[0] = byte(len(d.tuples))
	off := headerLen
	for _, t := range d.tuples {
		if len(t.Value) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: key %d value %d bytes", ErrBufferOverflow, t.Key, len(t.Value))
		}
		binary.LittleEndian.PutUint32(out[off:off+4], t.Key)
		out[off+4] = byte(t.Type)
		binary.LittleEndian.PutUint16(out[off+5:off+7], uint16(len(t.Value)))
		off += tupleHeaderLen
		off += copy(out[off:], t.Value)
	}
	return out, nil
}

// Decode parses a dictionary received into a buffer of limit bytes.
func Decode(data []byte, limit int) (Dict, error) {
	if len(data) > limit {
		return Dict{}, fmt.Errorf("%w: %d bytes, limit %d", ErrBufferOverflow, len(data), limit)
	}
	if len(data) < headerLen {
		return Dict{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	count := int(data[0])
	d := Dict{tuples: make([]Tuple, 0, count)}
	off := headerLen
	for i := 0; i < count; i++ {
		if len(data)-off < tupleHeaderLen {
			return Dict{}, fmt.Errorf("%w: tuple %d header truncated at offset %d", ErrMalformed, i, off)
		}
		key := binary.LittleEndian.Uint32(data[off : off+4])
		typ := TupleType(data[off+4])
		n := int(binary.LittleEndian.Uint16(data[off+5 : off+7]))
		off += tupleHeaderLen
		if typ > TypeInt {
			return Dict{}, fmt.Errorf("%w: tuple %d has unknown type %d", ErrMalformed, i, uint8(typ))
		}
		if len(data)-off < n {
			return Dict{}, fmt.Errorf("%w: tuple %d value truncated (%d of %d bytes)", ErrMalformed, i, len(data)-off, n)
		}
		d.put(key, typ, append([]byte(nil), data[off:off+n]...))
		off += n
	}
	if off != len(data) {
		return Dict{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(data)-off)
	}
	return d, nil
}
