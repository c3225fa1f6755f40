package diagram

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Magic identifies DIPHA files.
	Magic int64 = 8067171840
	// FileTypeImage is the DIPHA file type of weighted cubical complexes.
	FileTypeImage int64 = 1
	// FileTypeDiagram is the DIPHA file type of persistence diagrams.
	FileTypeDiagram int64 = 2

	headerSize = 3 * 8
	recordSize = 3 * 8
)

var (
	// ErrBadMagic is returned when a stream does not start with Magic.
	ErrBadMagic = errors.New("diagram: not a DIPHA file")
	// ErrBadFileType is returned for DIPHA files that are not diagrams.
	ErrBadFileType = errors.New("diagram: not a persistence diagram")
	// ErrCorrupt is returned for truncated or inconsistent payloads.
	ErrCorrupt = errors.New("diagram: corrupt payload")
)

// WriteTo writes d in the DIPHA persistence diagram format.
func (d *Diagram) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var buf [recordSize]byte

	binary.LittleEndian.PutUint64(buf[0:], uint64(Magic))
	binary.LittleEndian.PutUint64(buf[8:], uint64(FileTypeDiagram))
	binary.LittleEndian.PutUint64(buf[16:], uint64(len(d.Pairs)))
	if _, err := bw.Write(buf[:headerSize]); err != nil {
		return 0, err
	}
	written := int64(headerSize)

	for _, p := range d.Pairs {
		dim := int64(p.Dim)
		death := p.Death
		if p.IsEssential() {
			dim = -dim - 1
			death = 0
		}
		binary.LittleEndian.PutUint64(buf[0:], uint64(dim))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Birth))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(death))
		if _, err := bw.Write(buf[:]); err != nil {
			return written, err
		}
		written += recordSize
	}
	return written, bw.Flush()
}

// ReadFrom replaces the pairs of d with a DIPHA persistence diagram read
// from r. It returns the number of bytes taken from r; r is left positioned
// after the last record. Wrap r in a bufio.Reader for throughput.
func (d *Diagram) ReadFrom(r io.Reader) (int64, error) {
	var buf [recordSize]byte
	if _, err := io.ReadFull(r, buf[:headerSize]); err != nil {
		return 0, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	read := int64(headerSize)

	if int64(binary.LittleEndian.Uint64(buf[0:])) != Magic {
		return read, ErrBadMagic
	}
	if ft := int64(binary.LittleEndian.Uint64(buf[8:])); ft != FileTypeDiagram {
		return read, fmt.Errorf("%w: file type %d", ErrBadFileType, ft)
	}
	n := int64(binary.LittleEndian.Uint64(buf[16:]))
	if n < 0 {
		return read, fmt.Errorf("%w: negative pair count %d", ErrCorrupt, n)
	}

	// Grow as records arrive so a forged count cannot force a huge
	// allocation up front. Records are read straight from r so nothing
	// past the last one is consumed.
	d.Pairs = d.Pairs[:0]
	for i := int64(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return read, fmt.Errorf("%w: pair %d of %d: %w", ErrCorrupt, i, n, err)
		}
		read += recordSize

		dim := int64(binary.LittleEndian.Uint64(buf[0:]))
		birth := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))
		death := math.Float64frombits(binary.LittleEndian.Uint64(buf[16:]))
		if dim < 0 {
			d.Pairs = append(d.Pairs, Essential(int(-dim-1), birth))
		} else {
			d.Pairs = append(d.Pairs, Finite(int(dim), birth, death))
		}
	}
	return read, nil
}

// MarshalBinary returns the DIPHA encoding of d.
func (d *Diagram) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + recordSize*len(d.Pairs))
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a DIPHA persistence diagram.
func (d *Diagram) UnmarshalBinary(data []byte) error {
	n, err := d.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if n != int64(len(data)) {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, int64(len(data))-n)
	}
	return nil
}
