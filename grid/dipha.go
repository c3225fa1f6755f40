package grid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/homcubes/diagram"
)

// maxImageRank bounds the rank accepted while decoding so a forged header
// cannot request a huge shape table.
const maxImageRank = 8

var (
	// ErrBadMagic is returned when a stream does not start with the DIPHA
	// magic number.
	ErrBadMagic = diagram.ErrBadMagic
	// ErrNotImage is returned for DIPHA files that are not images.
	ErrNotImage = errors.New("grid: not a DIPHA image")
	// ErrCorrupt is returned for truncated or inconsistent images.
	ErrCorrupt = errors.New("grid: corrupt image")
)

// headerLen returns the byte size of the image header for rank.
func headerLen(rank int) int {
	return 8 * (4 + rank)
}

// WriteTo writes g as a DIPHA image. Periodicity is not part of the format.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var buf [8]byte
	var written int64

	put := func(v uint64) error {
		binary.LittleEndian.PutUint64(buf[:], v)
		n, err := bw.Write(buf[:])
		written += int64(n)
		return err
	}

	header := []int64{diagram.Magic, diagram.FileTypeImage, int64(len(g.Values)), int64(len(g.Shape))}
	for _, s := range g.Shape {
		header = append(header, int64(s))
	}
	for _, v := range header {
		if err := put(uint64(v)); err != nil {
			return written, err
		}
	}
	for _, v := range g.Values {
		if err := put(math.Float64bits(v)); err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// ReadFrom replaces g with a DIPHA image read from r. Periodic is reset.
func (g *Grid) ReadFrom(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var buf [8]byte
	var read int64

	next := func(what string) (int64, error) {
		n, err := io.ReadFull(br, buf[:])
		read += int64(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, what, err)
		}
		return int64(binary.LittleEndian.Uint64(buf[:])), nil
	}

	var head [4]int64
	for i, what := range []string{"magic", "file type", "value count", "rank"} {
		v, err := next(what)
		if err != nil {
			return read, err
		}
		head[i] = v
	}
	shape, n, err := checkHeader(head)
	if err != nil {
		return read, err
	}
	for axis := range shape {
		v, err := next("shape")
		if err != nil {
			return read, err
		}
		shape[axis] = int(v)
	}
	if err := checkShape(shape, n); err != nil {
		return read, err
	}

	values := make([]float64, 0, min(n, 1<<16))
	for i := 0; i < n; i++ {
		bits, err := next("values")
		if err != nil {
			return read, err
		}
		values = append(values, math.Float64frombits(uint64(bits)))
	}

	g.Shape, g.Periodic, g.Values = shape, nil, values
	return read, nil
}

// checkHeader validates the fixed part of the header and returns the shape
// table to fill and the value count.
func checkHeader(head [4]int64) ([]int, int, error) {
	if head[0] != diagram.Magic {
		return nil, 0, ErrBadMagic
	}
	if head[1] != diagram.FileTypeImage {
		return nil, 0, fmt.Errorf("%w: file type %d", ErrNotImage, head[1])
	}
	if head[2] < 0 || head[2] > math.MaxUint32 {
		return nil, 0, fmt.Errorf("%w: value count %d", ErrCorrupt, head[2])
	}
	if head[3] < 1 || head[3] > maxImageRank {
		return nil, 0, fmt.Errorf("%w: rank %d", ErrCorrupt, head[3])
	}
	return make([]int, head[3]), int(head[2]), nil
}

func checkShape(shape []int, n int) error {
	for axis, s := range shape {
		if s < 1 {
			return fmt.Errorf("%w: axis %d has extent %d", ErrCorrupt, axis, s)
		}
	}
	if numVertices(shape) != n {
		return fmt.Errorf("%w: shape %v does not hold %d values", ErrCorrupt, shape, n)
	}
	return nil
}

// MarshalBinary returns the DIPHA image encoding of g.
func (g *Grid) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerLen(len(g.Shape)) + 8*len(g.Values))
	if _, err := g.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a DIPHA image held in memory.
func (g *Grid) UnmarshalBinary(data []byte) error {
	shape, off, err := decodeHeader(data)
	if err != nil {
		return err
	}
	n := numVertices(shape)
	if len(data)-off != 8*n {
		return fmt.Errorf("%w: %d value bytes for %d values", ErrCorrupt, len(data)-off, n)
	}
	g.Shape, g.Periodic, g.Values = shape, nil, decodeValues(data[off:], n)
	return nil
}

// decodeHeader parses the header at the start of data and returns the shape
// and the offset of the value block.
func decodeHeader(data []byte) ([]int, int, error) {
	if len(data) < headerLen(0) {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	var head [4]int64
	for i := range head {
		head[i] = int64(binary.LittleEndian.Uint64(data[8*i:]))
	}
	shape, n, err := checkHeader(head)
	if err != nil {
		return nil, 0, err
	}
	off := headerLen(len(shape))
	if len(data) < off {
		return nil, 0, fmt.Errorf("%w: truncated shape", ErrCorrupt)
	}
	for axis := range shape {
		shape[axis] = int(int64(binary.LittleEndian.Uint64(data[headerLen(0)+8*axis:])))
	}
	if err := checkShape(shape, n); err != nil {
		return nil, 0, err
	}
	return shape, off, nil
}

func decodeValues(block []byte, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(block[8*i:]))
	}
	return values
}
