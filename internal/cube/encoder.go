package cube

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidShape is returned for empty shapes, too many axes or
// non-positive extents.
var ErrInvalidShape = errors.New("cube: invalid shape")

// ErrBitWidth is returned when the packed identifier of a shape would not
// fit into 64 bits.
type ErrBitWidth struct {
	Axis   int
	Extent int
	Bits   uint
}

func (e *ErrBitWidth) Error() string {
	return fmt.Sprintf("cube: axis %d with extent %d needs %d bits in total, exceeding 64", e.Axis, e.Extent, e.Bits)
}

// RequiredBits returns the width of the bit field of an axis with extent n:
// the smallest k with 2^(k-1) >= n, plus one bit for the degeneracy flag.
func RequiredBits(n int) uint {
	k := uint(1)
	for k < 64 && uint64(1)<<(k-1) < uint64(n) {
		k++
	}
	return k + 1
}

// Encoder packs coordinates of a fixed shape into IDs.
type Encoder struct {
	rank      int
	extent    [MaxRank]int
	periodic  [MaxRank]bool
	width     [MaxRank]uint
	shift     [MaxRank]uint
	flagMask  uint64
	totalBits uint
}

// NewEncoder validates the shape and computes the field layout.
// periodic may be nil (all axes open); otherwise it must match extent in length.
func NewEncoder(extent []int, periodic []bool) (*Encoder, error) {
	if len(extent) == 0 || len(extent) > MaxRank {
		return nil, fmt.Errorf("%w: rank %d not in [1,%d]", ErrInvalidShape, len(extent), MaxRank)
	}
	if periodic != nil && len(periodic) != len(extent) {
		return nil, fmt.Errorf("%w: %d periodicity flags for rank %d", ErrInvalidShape, len(periodic), len(extent))
	}

	e := &Encoder{rank: len(extent)}
	for i, n := range extent {
		if n <= 0 {
			return nil, fmt.Errorf("%w: axis %d has extent %d", ErrInvalidShape, i, n)
		}
		e.extent[i] = n
		if periodic != nil {
			e.periodic[i] = periodic[i]
		}
		e.width[i] = RequiredBits(n)
		e.shift[i] = e.totalBits
		e.totalBits += e.width[i]
		if e.totalBits > 64 {
			return nil, &ErrBitWidth{Axis: i, Extent: n, Bits: e.totalBits}
		}
		e.flagMask |= 1 << e.shift[i]
	}
	return e, nil
}

// Rank returns the number of axes.
func (e *Encoder) Rank() int { return e.rank }

// Extent returns the number of vertices along axis.
func (e *Encoder) Extent(axis int) int { return e.extent[axis] }

// Periodic reports whether axis wraps around.
func (e *Encoder) Periodic(axis int) bool { return e.periodic[axis] }

// Bits returns the total number of bits used by an ID.
func (e *Encoder) Bits() uint { return e.totalBits }

// Width returns the field width of axis.
func (e *Encoder) Width(axis int) uint { return e.width[axis] }

// Encode packs c. Coordinates are not bounds checked.
func (e *Encoder) Encode(c Coord) ID {
	var acc uint64
	for i := e.rank - 1; i >= 0; i-- {
		field := uint64(c.Pos[i]) << 1
		if c.Orient.Has(i) {
			field |= 1
		}
		acc = acc<<e.width[i] | field
	}
	return ID{v: acc}
}

// Decode unpacks id.
func (e *Encoder) Decode(id ID) Coord {
	var c Coord
	v := id.v
	for i := 0; i < e.rank; i++ {
		field := v & (1<<e.width[i] - 1)
		c.Pos[i] = int(field >> 1)
		if field&1 != 0 {
			c.Orient = c.Orient.With(i)
		}
		v >>= e.width[i]
	}
	return c
}

// Dimension returns the number of non-degenerate axes of id.
func (e *Encoder) Dimension(id ID) int {
	return bits.OnesCount64(id.v & e.flagMask)
}

// Facets appends the 2*dim facets of id to dst: for every non-degenerate
// axis the cell at the same anchor and the cell one step further along the
// axis, both degenerate on it. Periodic axes wrap, open axes are left to the
// caller.
func (e *Encoder) Facets(id ID, dst []ID) []ID {
	for i := 0; i < e.rank; i++ {
		flag := uint64(1) << e.shift[i]
		if id.v&flag == 0 {
			continue
		}
		low := id.v &^ flag
		dst = append(dst, ID{v: low})

		mask := (uint64(1)<<e.width[i] - 1) << e.shift[i]
		x := int((low&mask)>>e.shift[i]) >> 1
		x++
		if e.periodic[i] && x >= e.extent[i] {
			x -= e.extent[i]
		}
		high := low&^mask | uint64(x)<<(e.shift[i]+1)
		dst = append(dst, ID{v: high})
	}
	return dst
}
