package appmsg

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncode_WeatherRequestBytes(t *testing.T) {
	var d Dict
	d.WriteUint8(0, 0)

	got, err := Encode(d, 128)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x01, 0x00, 0x00, 0x00, 0x00, byte(TypeUint), 0x01, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode = % X, want % X", got, want)
	}
	if EncodedSize(d) != len(want) {
		t.Errorf("EncodedSize = %d, want %d", EncodedSize(d), len(want))
	}
}

func TestDecode_WeatherResponse(t *testing.T) {
	var d Dict
	d.WriteInt32(0, -7)
	d.WriteCString(1, "Light Snow")

	b, err := Encode(d, 128)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(b, 128)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	temp, ok := got.Find(0)
	if !ok {
		t.Fatal("key 0 missing")
	}
	if v, err := temp.Int32(); err != nil || v != -7 {
		t.Errorf("Int32() = %d, %v; want -7, nil", v, err)
	}
	cond, ok := got.Find(1)
	if !ok {
		t.Fatal("key 1 missing")
	}
	if s, err := cond.CString(); err != nil || s != "Light Snow" {
		t.Errorf("CString() = %q, %v; want %q, nil", s, err, "Light Snow")
	}
	if keys := got.Keys(); len(keys) != 2 || keys[0] != 0 || keys[1] != 1 {
		t.Errorf("Keys() = %v, want [0 1]", keys)
	}
}

func TestEncode_BufferOverflow(t *testing.T) {
	var d Dict
	d.WriteCString(1, strings.Repeat("x", 120)) // 1 + 7 + 121 = 129 bytes

	if _, err := Encode(d, 128); !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("Encode error = %v, want ErrBufferOverflow", err)
	}
	if _, err := Encode(d, 129); err != nil {
		t.Fatalf("Encode with room error = %v, want nil", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		limit int
		want  error
	}{
		{name: "empty", data: nil, limit: 128, want: ErrMalformed},
		{name: "over limit", data: make([]byte, 129), limit: 128, want: ErrBufferOverflow},
		{name: "truncated header", data: []byte{0x01, 0x00, 0x00}, limit: 128, want: ErrMalformed},
		{name: "truncated value", data: []byte{0x01, 0, 0, 0, 0, 0x03, 0x04, 0x00, 0xFF}, limit: 128, want: ErrMalformed},
		{name: "unknown type", data: []byte{0x01, 0, 0, 0, 0, 0x09, 0x00, 0x00}, limit: 128, want: ErrMalformed},
		{name: "trailing bytes", data: []byte{0x00, 0xAA}, limit: 128, want: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.limit)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_EmptyDictionary(t *testing.T) {
	d, err := Decode([]byte{0x00}, 128)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}
}

func TestTuple_Int32Widths(t *testing.T) {
	tests := []struct {
		name    string
		tuple   Tuple
		want    int32
		wantErr bool
	}{
		{name: "int8", tuple: Tuple{Type: TypeInt, Value: []byte{0xF6}}, want: -10},
		{name: "int16", tuple: Tuple{Type: TypeInt, Value: []byte{0x18, 0xFC}}, want: -1000},
		{name: "int32", tuple: Tuple{Type: TypeInt, Value: []byte{0x15, 0x00, 0x00, 0x00}}, want: 21},
		{name: "uint8", tuple: Tuple{Type: TypeUint, Value: []byte{0xC8}}, want: 200},
		{name: "uint32 too large", tuple: Tuple{Type: TypeUint, Value: []byte{0xFF, 0xFF, 0xFF, 0xFF}}, wantErr: true},
		{name: "odd width", tuple: Tuple{Type: TypeInt, Value: []byte{1, 2, 3}}, wantErr: true},
		{name: "cstring", tuple: Tuple{Type: TypeCString, Value: []byte("21\x00")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tuple.Int32()
			if tt.wantErr {
				if !errors.Is(err, ErrTupleType) {
					t.Fatalf("Int32() error = %v, want ErrTupleType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Int32() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Int32() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTuple_CStringAndUint8Types(t *testing.T) {
	if _, err := (Tuple{Type: TypeInt, Value: []byte{1}}).CString(); !errors.Is(err, ErrTupleType) {
		t.Errorf("CString() on int error = %v, want ErrTupleType", err)
	}
	if s, err := (Tuple{Type: TypeCString, Value: []byte("Clear")}).CString(); err != nil || s != "Clear" {
		t.Errorf("CString() without NUL = %q, %v", s, err)
	}
	if v, err := (Tuple{Type: TypeUint, Value: []byte{7}}).Uint8(); err != nil || v != 7 {
		t.Errorf("Uint8() = %d, %v; want 7, nil", v, err)
	}
	if _, err := (Tuple{Type: TypeUint, Value: []byte{7, 0}}).Uint8(); !errors.Is(err, ErrTupleType) {
		t.Errorf("Uint8() on uint16 error = %v, want ErrTupleType", err)
	}
}
