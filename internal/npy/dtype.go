package npy

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Kind is the numpy type character of a dtype.
type Kind byte

const (
	Bool  Kind = 'b'
	Int   Kind = 'i'
	Uint  Kind = 'u'
	Float Kind = 'f'
	Bytes Kind = 'S'
)

// DType describes the element type of an array: kind, width in bytes and
// byte order. BigEndian is ignored for single byte kinds and byte strings.
type DType struct {
	Kind      Kind
	ItemSize  int
	BigEndian bool
}

var (
	BoolType    = DType{Kind: Bool, ItemSize: 1}
	Int8Type    = DType{Kind: Int, ItemSize: 1}
	Int16Type   = DType{Kind: Int, ItemSize: 2}
	Int32Type   = DType{Kind: Int, ItemSize: 4}
	Int64Type   = DType{Kind: Int, ItemSize: 8}
	Uint8Type   = DType{Kind: Uint, ItemSize: 1}
	Uint16Type  = DType{Kind: Uint, ItemSize: 2}
	Uint32Type  = DType{Kind: Uint, ItemSize: 4}
	Uint64Type  = DType{Kind: Uint, ItemSize: 8}
	Float16Type = DType{Kind: Float, ItemSize: 2}
	Float32Type = DType{Kind: Float, ItemSize: 4}
	Float64Type = DType{Kind: Float, ItemSize: 8}
)

// ParseDType parses a numpy array-protocol type string such as "<f4",
// "|u1" or "|S12".
func ParseDType(descr string) (DType, error) {
	if len(descr) < 3 {
		return DType{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}

	var d DType
	switch descr[0] {
	case '<', '|', '=':
	case '>':
		d.BigEndian = true
	default:
		return DType{}, fmt.Errorf("%w: %q has no byte order", ErrUnsupportedDType, descr)
	}

	d.Kind = Kind(descr[1])
	size, err := strconv.Atoi(descr[2:])
	if err != nil || size <= 0 {
		return DType{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}
	d.ItemSize = size

	if !d.valid() {
		return DType{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}

	if d.ItemSize == 1 || d.Kind == Bytes {
		d.BigEndian = false
	}

	return d, nil
}

func (d DType) valid() bool {
	switch d.Kind {
	case Bool:
		return d.ItemSize == 1
	case Int, Uint:
		return d.ItemSize == 1 || d.ItemSize == 2 || d.ItemSize == 4 || d.ItemSize == 8
	case Float:
		return d.ItemSize == 2 || d.ItemSize == 4 || d.ItemSize == 8
	case Bytes:
		return d.ItemSize > 0
	}
	return false
}

// String returns the descr form written into npy headers.
func (d DType) String() string {
	order := byte('<')
	switch {
	case d.ItemSize == 1 || d.Kind == Bytes:
		order = '|'
	case d.BigEndian:
		order = '>'
	}
	return fmt.Sprintf("%c%c%d", order, d.Kind, d.ItemSize)
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (d DType) byteOrder() byteOrder {
	if d.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
