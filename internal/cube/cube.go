package cube

import (
	"cmp"
	"math"
	"math/bits"
)

// MaxRank is the largest supported grid rank.
const MaxRank = 3

// Level is a filtration level (rank of a vertex value, or the maximum over
// the vertices of a cell).
type Level uint32

// Infinity is the reserved level of "no cube". It never labels a real cell.
const Infinity Level = math.MaxUint32

// ID is a packed cell identifier. The zero value is never produced by an
// encoder for a cell of dimension > 0 and is used as "no cell" together with
// Infinity.
type ID struct {
	v uint64
}

// Uint64 returns the raw packed value.
func (id ID) Uint64() uint64 { return id.v }

// Orientation selects the non-degenerate axes of a cell.
type Orientation uint8

// Dim returns the topological dimension of cells with this orientation.
func (o Orientation) Dim() int { return bits.OnesCount8(uint8(o)) }

// Has reports whether axis is non-degenerate.
func (o Orientation) Has(axis int) bool { return o&(1<<axis) != 0 }

// With returns o with axis marked non-degenerate.
func (o Orientation) With(axis int) Orientation { return o | 1<<axis }

// Without returns o with axis marked degenerate.
func (o Orientation) Without(axis int) Orientation { return o &^ (1 << axis) }

// Coord is an unpacked cell: anchor vertex and orientation.
// Only the first Encoder.Rank() entries of Pos are meaningful.
type Coord struct {
	Pos    [MaxRank]int
	Orient Orientation
}

// Dim returns the dimension of the cell.
func (c Coord) Dim() int { return c.Orient.Dim() }

// Cube is a cell together with its filtration level.
type Cube struct {
	ID    ID
	Level Level
}

// None is the sentinel "no cube".
var None = Cube{Level: Infinity}

// Valid reports whether c is a real cube.
func (c Cube) Valid() bool { return c.Level != Infinity }

// Compare orders cubes by level, then by packed ID.
func Compare(a, b Cube) int {
	if c := cmp.Compare(a.Level, b.Level); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.v, b.ID.v)
}

// Less reports whether c sorts before o.
func (c Cube) Less(o Cube) bool { return Compare(c, o) < 0 }
