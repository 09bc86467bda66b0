package npy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidHeader    = errors.New("npy: invalid header")
	ErrUnsupportedDType = errors.New("npy: unsupported dtype")
	ErrShapeMismatch    = errors.New("npy: data does not match shape")
)

// Magic is the signature every npy stream starts with.
var Magic = []byte("\x93NUMPY")

const (
	// Data starts on a multiple of this many bytes, as numpy writes it.
	headerAlign = 64

	maxHeaderLen = 1 << 20
)

var (
	rxDescr   = regexp.MustCompile(`['"]descr['"]\s*:\s*['"]([^'"]+)['"]`)
	rxFortran = regexp.MustCompile(`['"]fortran_order['"]\s*:\s*(True|False)`)
	rxShape   = regexp.MustCompile(`['"]shape['"]\s*:\s*\(([^)]*)\)`)
)

// Header is the metadata block that precedes the raw array data.
type Header struct {
	Major        byte
	Minor        byte
	DType        DType
	FortranOrder bool
	Shape        []int
}

// Len is the number of elements described by the shape. A 0-d array holds
// exactly one element.
func (h Header) Len() int {
	n, _ := elementCount(h.Shape)
	return n
}

// ReadHeader consumes the preamble and header dict of an npy stream, leaving
// r positioned at the first data byte.
func ReadHeader(r io.Reader) (Header, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return Header{}, fmt.Errorf("npy: read preamble: %w", unexpectedEOF(err))
	}

	if !bytes.Equal(pre[:6], Magic) {
		return Header{}, fmt.Errorf("%w: missing magic string", ErrInvalidHeader)
	}

	major, minor := pre[6], pre[7]

	var headerLen int
	switch major {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Header{}, fmt.Errorf("npy: read header length: %w", unexpectedEOF(err))
		}
		headerLen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Header{}, fmt.Errorf("npy: read header length: %w", unexpectedEOF(err))
		}
		n := binary.LittleEndian.Uint32(b[:])
		if n > maxHeaderLen {
			return Header{}, fmt.Errorf("%w: header length %d too large", ErrInvalidHeader, n)
		}
		headerLen = int(n)
	default:
		return Header{}, fmt.Errorf("%w: unsupported format version %d.%d", ErrInvalidHeader, major, minor)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, fmt.Errorf("npy: read header: %w", unexpectedEOF(err))
	}

	h, err := parseHeader(string(raw))
	if err != nil {
		return Header{}, err
	}
	h.Major, h.Minor = major, minor

	return h, nil
}

func parseHeader(s string) (Header, error) {
	var h Header

	m := rxDescr.FindStringSubmatch(s)
	if m == nil {
		return Header{}, fmt.Errorf("%w: no descr in %q", ErrInvalidHeader, s)
	}
	dtype, err := ParseDType(m[1])
	if err != nil {
		return Header{}, err
	}
	h.DType = dtype

	m = rxFortran.FindStringSubmatch(s)
	if m == nil {
		return Header{}, fmt.Errorf("%w: no fortran_order in %q", ErrInvalidHeader, s)
	}
	h.FortranOrder = m[1] == "True"

	m = rxShape.FindStringSubmatch(s)
	if m == nil {
		return Header{}, fmt.Errorf("%w: no shape in %q", ErrInvalidHeader, s)
	}
	h.Shape, err = parseShape(m[1])
	if err != nil {
		return Header{}, err
	}

	return h, nil
}

func parseShape(s string) ([]int, error) {
	shape := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// Headers written on some platforms carry a long suffix, e.g. "3L".
		part = strings.TrimSuffix(part, "L")

		dim, err := strconv.Atoi(part)
		if err != nil || dim < 0 {
			return nil, fmt.Errorf("%w: bad dimension %q", ErrInvalidHeader, part)
		}
		shape = append(shape, dim)
	}

	if _, ok := elementCount(shape); !ok {
		return nil, fmt.Errorf("%w: shape %v overflows", ErrInvalidHeader, shape)
	}

	return shape, nil
}

func formatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(dims, ", ") + ")"
}

// writeHeader writes the preamble and padded header dict. Version 1.0 is
// used unless the dict does not fit a uint16 length.
func writeHeader(w io.Writer, dtype DType, shape []int) error {
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", dtype, formatShape(shape))

	major, lenBytes := byte(1), 2
	header := padHeader(dict, 8+lenBytes)
	if len(header) > math.MaxUint16 {
		major, lenBytes = 2, 4
		header = padHeader(dict, 8+lenBytes)
	}

	buf := make([]byte, 0, 8+lenBytes+len(header))
	buf = append(buf, Magic...)
	buf = append(buf, major, 0)
	if lenBytes == 2 {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	} else {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(header)))
	}
	buf = append(buf, header...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("npy: write header: %w", err)
	}
	return nil
}

func padHeader(dict string, preamble int) string {
	total := preamble + len(dict) + 1
	pad := (headerAlign - total%headerAlign) % headerAlign
	return dict + strings.Repeat(" ", pad) + "\n"
}

func elementCount(shape []int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d == 0 {
			return 0, true
		}
		if n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
