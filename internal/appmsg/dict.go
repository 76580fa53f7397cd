// Package appmsg implements the key/value dictionaries exchanged with the
// companion device, and their bounded binary encoding.
package appmsg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrBufferOverflow = errors.New("appmsg: dictionary exceeds buffer size")
	ErrMalformed      = errors.New("appmsg: malformed dictionary")
	ErrTupleType      = errors.New("appmsg: unexpected tuple type")
)

// TupleType is the value type tag carried by each tuple on the wire.
type TupleType uint8

const (
	TypeByteArray TupleType = 0
	TypeCString   TupleType = 1
	TypeUint      TupleType = 2
	TypeInt       TupleType = 3
)

func (t TupleType) String() string {
	switch t {
	case TypeByteArray:
		return "bytes"
	case TypeCString:
		return "cstring"
	case TypeUint:
		return "uint"
	case TypeInt:
		return "int"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Tuple is one keyed value of a dictionary.
type Tuple struct {
	Key   uint32
	Type  TupleType
	Value []byte
}

// Int32 returns the tuple as a signed integer. Signed values of 1, 2 or 4
// bytes are accepted, as are unsigned values that fit in an int32.
func (t Tuple) Int32() (int32, error) {
	switch t.Type {
	case TypeInt:
		switch len(t.Value) {
		case 1:
			return int32(int8(t.Value[0])), nil
		case 2:
			return int32(int16(binary.LittleEndian.Uint16(t.Value))), nil
		case 4:
			return int32(binary.LittleEndian.Uint32(t.Value)), nil
		}
	case TypeUint:
		switch len(t.Value) {
		case 1:
			return int32(t.Value[0]), nil
		case 2:
			return int32(binary.LittleEndian.Uint16(t.Value)), nil
		case 4:
			v := binary.LittleEndian.Uint32(t.Value)
			if v <= math.MaxInt32 {
				return int32(v), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: key %d is %s/%d bytes, want integer", ErrTupleType, t.Key, t.Type, len(t.Value))
}

// Uint8 returns the tuple as a single unsigned byte.
func (t Tuple) Uint8() (uint8, error) {
	if t.Type != TypeUint || len(t.Value) != 1 {
		return 0, fmt.Errorf("%w: key %d is %s/%d bytes, want uint8", ErrTupleType, t.Key, t.Type, len(t.Value))
	}
	return t.Value[0], nil
}

// CString returns the tuple as text, without its terminating NUL.
func (t Tuple) CString() (string, error) {
	if t.Type != TypeCString {
		return "", fmt.Errorf("%w: key %d is %s, want cstring", ErrTupleType, t.Key, t.Type)
	}
	s := string(t.Value)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s, nil
}

// Dict is an ordered set of tuples. Lookups return the first tuple with a key.
type Dict struct {
	tuples []Tuple
}

func (d *Dict) put(key uint32, typ TupleType, value []byte) {
	d.tuples = append(d.tuples, Tuple{Key: key, Type: typ, Value: value})
}

func (d *Dict) WriteUint8(key uint32, v uint8) {
	d.put(key, TypeUint, []byte{v})
}

func (d *Dict) WriteInt32(key uint32, v int32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	d.put(key, TypeInt, b)
}

func (d *Dict) WriteCString(key uint32, s string) {
	b := make([]byte, 0, len(s)+1)
	b = append(b, s...)
	d.put(key, TypeCString, append(b, 0))
}

func (d *Dict) WriteData(key uint32, data []byte) {
	d.put(key, TypeByteArray, append([]byte(nil), data...))
}

// Find returns the first tuple stored under key.
func (d Dict) Find(key uint32) (Tuple, bool) {
	for _, t := range d.tuples {
		if t.Key == key {
			return t, true
		}
	}
	return Tuple{}, false
}

// Len returns the number of tuples.
func (d Dict) Len() int {
	return len(d.tuples)
}

// Keys returns tuple keys in wire order.
func (d Dict) Keys() []uint32 {
	keys := make([]uint32, len(d.tuples))
	for i, t := range d.tuples {
		keys[i] = t.Key
	}
	return keys
}
