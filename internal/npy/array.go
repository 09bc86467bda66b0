// Package npy reads and writes the numpy .npy binary array format.
package npy

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"
)

// Element lists the Go types an Array can be built from.
type Element interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		float16.Float16 | float32 | float64
}

// Array is an n-dimensional array held in C (row-major) order. Element bytes
// are kept in the byte order of DType.
type Array struct {
	DType DType
	Shape []int
	data  []byte
}

// New builds an array of the given shape from values in C order.
func New[T Element](shape []int, values []T) (*Array, error) {
	n, ok := elementCount(shape)
	if !ok || n != len(values) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShapeMismatch, shape, n, len(values))
	}

	var zero T
	dtype := dtypeOf(zero)
	bo := dtype.byteOrder()
	data := make([]byte, 0, n*dtype.ItemSize)

	for _, v := range values {
		switch v := any(v).(type) {
		case bool:
			if v {
				data = append(data, 1)
			} else {
				data = append(data, 0)
			}
		case int8:
			data = append(data, byte(v))
		case int16:
			data = bo.AppendUint16(data, uint16(v))
		case int32:
			data = bo.AppendUint32(data, uint32(v))
		case int64:
			data = bo.AppendUint64(data, uint64(v))
		case uint8:
			data = append(data, v)
		case uint16:
			data = bo.AppendUint16(data, v)
		case uint32:
			data = bo.AppendUint32(data, v)
		case uint64:
			data = bo.AppendUint64(data, v)
		case float16.Float16:
			data = bo.AppendUint16(data, v.Bits())
		case float32:
			data = bo.AppendUint32(data, math.Float32bits(v))
		case float64:
			data = bo.AppendUint64(data, math.Float64bits(v))
		}
	}

	return &Array{DType: dtype, Shape: append([]int{}, shape...), data: data}, nil
}

func dtypeOf(v any) DType {
	switch v.(type) {
	case bool:
		return BoolType
	case int8:
		return Int8Type
	case int16:
		return Int16Type
	case int32:
		return Int32Type
	case int64:
		return Int64Type
	case uint8:
		return Uint8Type
	case uint16:
		return Uint16Type
	case uint32:
		return Uint32Type
	case uint64:
		return Uint64Type
	case float16.Float16:
		return Float16Type
	case float32:
		return Float32Type
	default:
		return Float64Type
	}
}

// FromBytes returns the 0-d byte string array numpy produces when saving a
// raw bytes object. An empty input becomes a single NUL byte of type |S1.
func FromBytes(b []byte) *Array {
	data := append([]byte{}, b...)
	if len(data) == 0 {
		data = []byte{0}
	}

	return &Array{
		DType: DType{Kind: Bytes, ItemSize: len(data)},
		Shape: []int{},
		data:  data,
	}
}

// Len returns the number of elements.
func (a *Array) Len() int {
	n, _ := elementCount(a.Shape)
	return n
}

// Data returns the raw element bytes in C order.
func (a *Array) Data() []byte {
	return a.data
}

// At returns element i in C order as bool, int64, uint64, float64 or, for
// byte strings, a string with trailing NUL bytes removed.
func (a *Array) At(i int) any {
	size := a.DType.ItemSize
	b := a.data[i*size : (i+1)*size]
	bo := a.DType.byteOrder()

	switch a.DType.Kind {
	case Bool:
		return b[0] != 0
	case Int:
		switch size {
		case 1:
			return int64(int8(b[0]))
		case 2:
			return int64(int16(bo.Uint16(b)))
		case 4:
			return int64(int32(bo.Uint32(b)))
		default:
			return int64(bo.Uint64(b))
		}
	case Uint:
		switch size {
		case 1:
			return uint64(b[0])
		case 2:
			return uint64(bo.Uint16(b))
		case 4:
			return uint64(bo.Uint32(b))
		default:
			return bo.Uint64(b)
		}
	case Float:
		switch size {
		case 2:
			return float64(float16.Frombits(bo.Uint16(b)).Float32())
		case 4:
			return float64(math.Float32frombits(bo.Uint32(b)))
		default:
			return math.Float64frombits(bo.Uint64(b))
		}
	case Bytes:
		return string(bytes.TrimRight(b, "\x00"))
	}

	return nil
}

// ToNested converts the array into nested []any slices following its shape,
// the same structure numpy's tolist produces. A 0-d array yields its scalar.
func (a *Array) ToNested() any {
	if len(a.Shape) == 0 {
		return a.At(0)
	}

	next := 0
	var build func(dim int) []any
	build = func(dim int) []any {
		out := make([]any, a.Shape[dim])
		for i := range out {
			if dim == len(a.Shape)-1 {
				out[i] = a.At(next)
				next++
			} else {
				out[i] = build(dim + 1)
			}
		}
		return out
	}

	return build(0)
}

// Decode reads a complete npy stream. Fortran ordered data is rearranged
// into C order.
func Decode(r io.Reader) (*Array, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	n, _ := elementCount(h.Shape)
	if n > math.MaxInt/h.DType.ItemSize {
		return nil, fmt.Errorf("%w: shape %v too large", ErrInvalidHeader, h.Shape)
	}
	size := int64(n * h.DType.ItemSize)

	// Grow with the data actually received rather than trusting the header.
	var buf bytes.Buffer
	read, err := io.CopyN(&buf, r, size)
	if err != nil {
		return nil, fmt.Errorf("npy: read data (%d of %d bytes): %w", read, size, unexpectedEOF(err))
	}

	data := buf.Bytes()
	if h.FortranOrder && len(h.Shape) > 1 {
		data = fortranToC(data, h.Shape, h.DType.ItemSize)
	}

	return &Array{DType: h.DType, Shape: h.Shape, data: data}, nil
}

// Encode writes a in npy format, C order.
func Encode(w io.Writer, a *Array) error {
	if len(a.data) != a.Len()*a.DType.ItemSize {
		return fmt.Errorf("%w: %d bytes for shape %v of %s", ErrShapeMismatch, len(a.data), a.Shape, a.DType)
	}

	if err := writeHeader(w, a.DType, a.Shape); err != nil {
		return err
	}

	if _, err := w.Write(a.data); err != nil {
		return fmt.Errorf("npy: write data: %w", err)
	}
	return nil
}

func fortranToC(src []byte, shape []int, itemSize int) []byte {
	dst := make([]byte, len(src))

	strides := make([]int, len(shape))
	stride := 1
	for i, d := range shape {
		strides[i] = stride
		stride *= d
	}

	idx := make([]int, len(shape))
	for c := 0; c*itemSize < len(src); c++ {
		f := 0
		for i, v := range idx {
			f += v * strides[i]
		}
		copy(dst[c*itemSize:(c+1)*itemSize], src[f*itemSize:(f+1)*itemSize])

		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}

	return dst
}
